package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/spf13/viper"
)

func TestRegisterVote(t *testing.T) {
	openTestDatabase(t)
	survey, question, option := seedSurvey(t, "Customer feedback", true)

	receipt, err := RegisterVote(VoteRequest{
		SurveyID:   survey.ID,
		QuestionID: question.ID,
		OptionID:   option.ID,
		Source:     "newsletter",
	}, "192.168.1.100", "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36")
	if err != nil {
		t.Fatalf("vote should have been accepted: %v", err)
	}
	if receipt.VoteID == 0 {
		t.Fatalf("receipt should carry the vote id")
	}
	if receipt.SessionID == nil {
		t.Fatalf("audience collection is on, receipt should carry a session id")
	}
	if receipt.AntifraudToken != fmt.Sprintf("session-%d", *receipt.SessionID) {
		t.Fatalf("unexpected antifraud token %q", receipt.AntifraudToken)
	}

	var vote models.Vote
	if err := database.C.First(&vote, receipt.VoteID).Error; err != nil {
		t.Fatalf("vote row should exist: %v", err)
	}
	if vote.IPAddress != "192.168.1.0" {
		t.Fatalf("stored address should be anonymized, got %q", vote.IPAddress)
	}

	var session models.ResponseSession
	if err := database.C.First(&session, *receipt.SessionID).Error; err != nil {
		t.Fatalf("session row should exist: %v", err)
	}
	if session.Status != models.ResponseStatusCompleted {
		t.Fatalf("status should default to COMPLETED, got %q", session.Status)
	}
	if session.CompletedAt == nil {
		t.Fatalf("completed session should carry a completion time")
	}
	if session.OperatingSystem != "Windows" || session.Browser != "Chrome" {
		t.Fatalf("attributes should be inferred from the user-agent, got %q / %q",
			session.OperatingSystem, session.Browser)
	}
	if session.Source != "newsletter" {
		t.Fatalf("explicit source should win, got %q", session.Source)
	}
	if session.Country != UnknownValue {
		t.Fatalf("missing country should be unknown, got %q", session.Country)
	}
}

func TestRegisterVoteSurveyNotFound(t *testing.T) {
	openTestDatabase(t)

	_, err := RegisterVote(VoteRequest{SurveyID: 999, QuestionID: 1, OptionID: 1}, "10.0.0.1", "")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.Resource != "survey" {
		t.Fatalf("expected survey not-found, got %v", err)
	}
}

func TestRegisterVoteInactiveSurveyWritesNothing(t *testing.T) {
	openTestDatabase(t)
	survey, question, option := seedSurvey(t, "Paused survey", false)

	_, err := RegisterVote(VoteRequest{
		SurveyID:   survey.ID,
		QuestionID: question.ID,
		OptionID:   option.ID,
	}, "10.0.0.1", "")

	var rule *RuleError
	if !errors.As(err, &rule) || rule.Reason != ReasonSurveyInactive {
		t.Fatalf("expected survey_inactive, got %v", err)
	}
	if countRows(t, &models.Vote{}) != 0 {
		t.Fatalf("rejected vote must not leave a vote row")
	}
	if countRows(t, &models.ResponseSession{}) != 0 {
		t.Fatalf("rejected vote must not leave a session row")
	}
}

func TestRegisterVoteExpiredSurvey(t *testing.T) {
	openTestDatabase(t)
	survey, question, option := seedSurvey(t, "Expired survey", true)
	past := time.Now().Add(-time.Hour)
	if err := database.C.Model(&survey).Update("expired_at", past).Error; err != nil {
		t.Fatalf("failed to expire survey: %v", err)
	}

	_, err := RegisterVote(VoteRequest{
		SurveyID:   survey.ID,
		QuestionID: question.ID,
		OptionID:   option.ID,
	}, "10.0.0.1", "")

	var rule *RuleError
	if !errors.As(err, &rule) || rule.Reason != ReasonSurveyExpired {
		t.Fatalf("expected survey_expired, got %v", err)
	}
}

func TestRegisterVoteCrossSurveyQuestion(t *testing.T) {
	openTestDatabase(t)
	survey, _, option := seedSurvey(t, "Survey A", true)
	_, otherQuestion, _ := seedSurvey(t, "Survey B", true)

	_, err := RegisterVote(VoteRequest{
		SurveyID:   survey.ID,
		QuestionID: otherQuestion.ID,
		OptionID:   option.ID,
	}, "10.0.0.1", "")

	var rule *RuleError
	if !errors.As(err, &rule) || rule.Reason != ReasonQuestionSurveyMismatch {
		t.Fatalf("expected question_survey_mismatch, got %v", err)
	}
}

func TestRegisterVoteCrossQuestionOption(t *testing.T) {
	openTestDatabase(t)
	survey, question, _ := seedSurvey(t, "Survey A", true)
	_, _, otherOption := seedSurvey(t, "Survey B", true)

	_, err := RegisterVote(VoteRequest{
		SurveyID:   survey.ID,
		QuestionID: question.ID,
		OptionID:   otherOption.ID,
	}, "10.0.0.1", "")

	var rule *RuleError
	if !errors.As(err, &rule) || rule.Reason != ReasonOptionQuestionMismatch {
		t.Fatalf("expected option_question_mismatch, got %v", err)
	}
}

func TestRegisterVoteInactiveOption(t *testing.T) {
	openTestDatabase(t)
	survey, question, option := seedSurvey(t, "Survey A", true)
	if err := database.C.Model(&option).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to disable option: %v", err)
	}

	_, err := RegisterVote(VoteRequest{
		SurveyID:   survey.ID,
		QuestionID: question.ID,
		OptionID:   option.ID,
	}, "10.0.0.1", "")

	var rule *RuleError
	if !errors.As(err, &rule) || rule.Reason != ReasonOptionInactive {
		t.Fatalf("expected option_inactive, got %v", err)
	}
}

func TestRegisterVoteWithoutAudienceCollection(t *testing.T) {
	openTestDatabase(t)
	viper.Set("privacy.audience_enabled", false)
	t.Cleanup(func() { viper.Set("privacy.audience_enabled", true) })

	survey, question, option := seedSurvey(t, "Survey A", true)
	receipt, err := RegisterVote(VoteRequest{
		SurveyID:   survey.ID,
		QuestionID: question.ID,
		OptionID:   option.ID,
	}, "10.0.0.1", "")
	if err != nil {
		t.Fatalf("vote should have been accepted: %v", err)
	}

	if receipt.SessionID != nil || receipt.AntifraudToken != "" {
		t.Fatalf("audience collection off should skip the session, got %+v", receipt)
	}
	if countRows(t, &models.ResponseSession{}) != 0 {
		t.Fatalf("no session row should be written when collection is off")
	}
	if countRows(t, &models.Vote{}) != 1 {
		t.Fatalf("the vote itself must still be written")
	}
}

func TestRegisterVoteAbandonedKeepsReportedTimeOnly(t *testing.T) {
	openTestDatabase(t)
	survey, question, option := seedSurvey(t, "Survey A", true)

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	receipt, err := RegisterVote(VoteRequest{
		SurveyID:   survey.ID,
		QuestionID: question.ID,
		OptionID:   option.ID,
		Status:     models.ResponseStatusAbandoned,
		StartedAt:  &started,
	}, "10.0.0.1", "")
	if err != nil {
		t.Fatalf("vote should have been accepted: %v", err)
	}

	var session models.ResponseSession
	if err := database.C.First(&session, *receipt.SessionID).Error; err != nil {
		t.Fatalf("session row should exist: %v", err)
	}
	if session.Status != models.ResponseStatusAbandoned {
		t.Fatalf("status should be ABANDONED, got %q", session.Status)
	}
	if session.CompletedAt != nil {
		t.Fatalf("abandonment without a reported end must stay open, got %v", session.CompletedAt)
	}
	if !session.StartedAt.Equal(started) {
		t.Fatalf("reported start should be kept, got %v", session.StartedAt)
	}
}
