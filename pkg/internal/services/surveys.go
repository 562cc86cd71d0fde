package services

import (
	"errors"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func ListSurvey(take, offset int, onlyActive, includeDeleted bool) ([]models.Survey, int64, error) {
	tx := database.C.Model(&models.Survey{})
	if includeDeleted {
		tx = tx.Unscoped()
	}
	if onlyActive {
		tx = tx.Where("is_active = ?", true)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var surveys []models.Survey
	if err := tx.Order("created_at DESC").Offset(offset).Limit(take).Find(&surveys).Error; err != nil {
		return nil, 0, err
	}
	return surveys, count, nil
}

func GetSurvey(id uint, includeDeleted bool) (models.Survey, error) {
	tx := database.C
	if includeDeleted {
		tx = tx.Unscoped()
	}

	var survey models.Survey
	if err := tx.Where("id = ?", id).First(&survey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return survey, NewNotFound("survey")
		}
		return survey, err
	}
	return survey, nil
}

// GetSurveyStructure loads a survey with its questions and options, the shape
// public clients render a voting form from.
func GetSurveyStructure(id uint, includeInactiveOptions, includeDeleted bool) (models.Survey, error) {
	survey, err := GetSurvey(id, includeDeleted)
	if err != nil {
		return survey, err
	}

	questionTx := database.C
	if includeDeleted {
		questionTx = questionTx.Unscoped()
	}
	var questions []models.Question
	if err := questionTx.Where("survey_id = ?", id).Order("\"order\" ASC").Find(&questions).Error; err != nil {
		return survey, err
	}

	questionIds := lo.Map(questions, func(q models.Question, _ int) uint { return q.ID })
	if len(questionIds) > 0 {
		optionTx := database.C
		if includeDeleted {
			optionTx = optionTx.Unscoped()
		}
		if !includeInactiveOptions {
			optionTx = optionTx.Where("is_active = ?", true)
		}
		var options []models.Option
		if err := optionTx.Where("question_id IN ?", questionIds).Order("id ASC").Find(&options).Error; err != nil {
			return survey, err
		}
		grouped := lo.GroupBy(options, func(o models.Option) uint { return o.QuestionID })
		for idx := range questions {
			questions[idx].Options = grouped[questions[idx].ID]
		}
	}

	survey.Questions = questions
	return survey, nil
}

func NewSurvey(survey models.Survey) (models.Survey, error) {
	var count int64
	if err := database.C.Model(&models.Survey{}).Where("title = ?", survey.Title).Count(&count).Error; err != nil {
		return survey, err
	}
	if count > 0 {
		return survey, NewRuleError(ReasonDuplicateTitle, "a survey with this title already exists")
	}

	if err := database.C.Create(&survey).Error; err != nil {
		return survey, err
	}

	log.Info().Uint("id", survey.ID).Str("title", survey.Title).Msg("Survey created.")
	return survey, nil
}

func NewSurveyBatch(surveys []models.Survey) ([]models.Survey, error) {
	if len(surveys) == 0 {
		return nil, NewRuleError(ReasonEmptyBatch, "survey batch cannot be empty")
	}

	titles := lo.Map(surveys, func(s models.Survey, _ int) string { return s.Title })
	if len(lo.Uniq(titles)) != len(titles) {
		return nil, NewRuleError(ReasonDuplicateTitle, "survey batch contains duplicated titles")
	}

	var count int64
	if err := database.C.Model(&models.Survey{}).Where("title IN ?", titles).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewRuleError(ReasonDuplicateTitle, "one of the titles is already taken")
	}

	if err := database.C.Create(&surveys).Error; err != nil {
		return nil, err
	}
	return surveys, nil
}

func UpdateSurvey(id uint, patch models.Survey) (models.Survey, error) {
	survey, err := GetSurvey(id, false)
	if err != nil {
		return survey, err
	}

	var count int64
	if err := database.C.Model(&models.Survey{}).
		Where("title = ? AND id != ?", patch.Title, id).
		Count(&count).Error; err != nil {
		return survey, err
	}
	if count > 0 {
		return survey, NewRuleError(ReasonDuplicateTitle, "another survey already uses this title")
	}

	survey.Title = patch.Title
	survey.Description = patch.Description
	survey.IsActive = patch.IsActive
	survey.ExpiredAt = patch.ExpiredAt
	survey.Metadata = patch.Metadata

	if err := database.C.Save(&survey).Error; err != nil {
		return survey, err
	}
	return survey, nil
}

// RestoreSurvey undoes a soft delete: the survey comes back active and its
// questions and options are un-deleted and re-enabled. Votes and sessions
// were dropped for good by the delete cascade and do not return.
func RestoreSurvey(id uint) (models.Survey, error) {
	if _, err := GetSurvey(id, true); err != nil {
		return models.Survey{}, err
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Survey{}).Where("id = ?", id).
			Updates(map[string]any{"deleted_at": nil, "is_active": true}).Error; err != nil {
			return err
		}

		var questionIds []uint
		if err := tx.Unscoped().Model(&models.Question{}).Where("survey_id = ?", id).
			Pluck("id", &questionIds).Error; err != nil {
			return err
		}
		if len(questionIds) > 0 {
			if err := tx.Unscoped().Model(&models.Question{}).Where("survey_id = ?", id).
				Update("deleted_at", nil).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Model(&models.Option{}).Where("question_id IN ?", questionIds).
				Updates(map[string]any{"deleted_at": nil, "is_active": true}).Error; err != nil {
				return err
			}
		}

		log.Info().Uint("id", id).Msg("Survey restored.")
		return nil
	})
	if err != nil {
		return models.Survey{}, err
	}

	return GetSurvey(id, false)
}

// DeleteSurvey soft-deletes a survey and its questions and options, and drops
// the raw votes and sessions that belonged to it. Aggregation never sees
// soft-deleted rows unless explicitly asked to include them.
func DeleteSurvey(id uint) error {
	survey, err := GetSurvey(id, false)
	if err != nil {
		return err
	}

	return database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&survey).Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Delete(&survey).Error; err != nil {
			return err
		}

		var questionIds []uint
		if err := tx.Model(&models.Question{}).Where("survey_id = ?", id).Pluck("id", &questionIds).Error; err != nil {
			return err
		}
		if len(questionIds) > 0 {
			if err := tx.Where("question_id IN ?", questionIds).Delete(&models.Option{}).Error; err != nil {
				return err
			}
			if err := tx.Where("survey_id = ?", id).Delete(&models.Question{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("survey_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("survey_id = ?", id).Delete(&models.ResponseSession{}).Error; err != nil {
			return err
		}

		log.Info().Uint("id", id).Msg("Survey deleted with cascade.")
		return nil
	})
}
