package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const maxStoredUserAgent = 500

type VoteRequest struct {
	SurveyID   uint `json:"survey_id" validate:"required"`
	QuestionID uint `json:"question_id" validate:"required"`
	OptionID   uint `json:"option_id" validate:"required"`

	DeviceType      string `json:"device_type"`
	OperatingSystem string `json:"operating_system"`
	Browser         string `json:"browser"`
	Source          string `json:"source"`
	Country         string `json:"country"`
	State           string `json:"state"`
	City            string `json:"city"`

	Status      models.ResponseStatus `json:"status" validate:"omitempty,oneof=STARTED COMPLETED ABANDONED"`
	StartedAt   *time.Time            `json:"started_at"`
	CompletedAt *time.Time            `json:"completed_at"`
}

type VoteReceipt struct {
	VoteID         uint   `json:"vote_id"`
	SessionID      *uint  `json:"session_id"`
	AntifraudToken string `json:"antifraud_token,omitempty"`
}

// RegisterVote validates a vote against its survey/question/option graph and
// persists it, synthesizing a response session when audience collection is
// on. Validation is terminal on first failure and nothing is written until
// every check passed; the session and vote land in one transaction.
func RegisterVote(request VoteRequest, ipAddress, userAgent string) (VoteReceipt, error) {
	var receipt VoteReceipt

	var survey models.Survey
	if err := database.C.Where("id = ?", request.SurveyID).First(&survey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return receipt, NewNotFound("survey")
		}
		return receipt, err
	}
	if !survey.IsActive {
		return receipt, NewRuleError(ReasonSurveyInactive, "survey is inactive")
	}
	if survey.ExpiredAt != nil && survey.ExpiredAt.Before(time.Now()) {
		return receipt, NewRuleError(ReasonSurveyExpired, "survey has expired")
	}

	var question models.Question
	if err := database.C.Where("id = ?", request.QuestionID).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return receipt, NewNotFound("question")
		}
		return receipt, err
	}
	if question.SurveyID != survey.ID {
		return receipt, NewRuleError(ReasonQuestionSurveyMismatch, "question does not belong to the survey")
	}

	var option models.Option
	if err := database.C.Where("id = ?", request.OptionID).First(&option).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return receipt, NewNotFound("option")
		}
		return receipt, err
	}
	if option.QuestionID != question.ID {
		return receipt, NewRuleError(ReasonOptionQuestionMismatch, "option does not belong to the question")
	}
	if !option.IsActive {
		return receipt, NewRuleError(ReasonOptionInactive, "option is inactive")
	}

	safeIP := AnonymizeIP(ipAddress)
	safeUA := NormalizeUserAgent(userAgent, maxStoredUserAgent)

	vote := models.Vote{
		SurveyID:   survey.ID,
		QuestionID: question.ID,
		OptionID:   option.ID,
		IPAddress:  safeIP,
		UserAgent:  safeUA,
	}

	var session *models.ResponseSession
	if viper.GetBool("privacy.audience_enabled") {
		session = buildSession(request, survey.ID, question.ID, safeIP, safeUA, userAgent)
	}

	if err := database.C.Transaction(func(tx *gorm.DB) error {
		if session != nil {
			if err := tx.Create(session).Error; err != nil {
				return err
			}
			vote.SessionID = &session.ID
		}
		return tx.Create(&vote).Error
	}); err != nil {
		return receipt, err
	}

	receipt.VoteID = vote.ID
	if session != nil {
		receipt.SessionID = &session.ID
		receipt.AntifraudToken = fmt.Sprintf("session-%d", session.ID)
	}

	log.Debug().
		Uint("survey", survey.ID).
		Uint("question", question.ID).
		Uint("option", option.ID).
		Msg("Vote registered.")

	return receipt, nil
}

func buildSession(request VoteRequest, surveyId, questionId uint, safeIP, safeUA, rawUA string) *models.ResponseSession {
	status := request.Status
	if len(status) == 0 {
		status = models.ResponseStatusCompleted
	}

	session := models.ResponseSession{
		SurveyID:        surveyId,
		QuestionID:      &questionId,
		Status:          status,
		IPAddress:       safeIP,
		UserAgent:       safeUA,
		DeviceType:      firstNonBlank(request.DeviceType, DetectDevice(rawUA)),
		OperatingSystem: firstNonBlank(request.OperatingSystem, DetectOS(rawUA)),
		Browser:         firstNonBlank(request.Browser, DetectBrowser(rawUA)),
		Source:          Normalize(request.Source),
		Country:         Normalize(request.Country),
		State:           Normalize(request.State),
		City:            Normalize(request.City),
	}

	if request.StartedAt != nil {
		session.StartedAt = *request.StartedAt
	} else {
		session.StartedAt = time.Now()
	}

	switch status {
	case models.ResponseStatusCompleted:
		if request.CompletedAt != nil {
			session.CompletedAt = request.CompletedAt
		} else {
			now := time.Now()
			session.CompletedAt = &now
		}
	case models.ResponseStatusAbandoned:
		// Only an explicitly reported abandonment time counts.
		session.CompletedAt = request.CompletedAt
	}

	return &session
}

func firstNonBlank(candidate, fallback string) string {
	normalized := Normalize(candidate)
	if normalized != UnknownValue {
		return normalized
	}
	return Normalize(fallback)
}
