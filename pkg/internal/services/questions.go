package services

import (
	"errors"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func ListQuestion(surveyId uint, take, offset int) ([]models.Question, int64, error) {
	tx := database.C.Model(&models.Question{}).Where("survey_id = ?", surveyId)

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var questions []models.Question
	if err := tx.Order("\"order\" ASC").Offset(offset).Limit(take).Find(&questions).Error; err != nil {
		return nil, 0, err
	}
	return questions, count, nil
}

func GetQuestion(id uint) (models.Question, error) {
	var question models.Question
	if err := database.C.Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return question, NewNotFound("question")
		}
		return question, err
	}
	return question, nil
}

func NewQuestion(question models.Question) (models.Question, error) {
	if _, err := GetSurvey(question.SurveyID, false); err != nil {
		return question, err
	}

	var count int64
	if err := database.C.Model(&models.Question{}).
		Where("survey_id = ? AND \"order\" = ?", question.SurveyID, question.Order).
		Count(&count).Error; err != nil {
		return question, err
	}
	if count > 0 {
		return question, NewRuleError(ReasonDuplicateOrder, "another question already uses this order")
	}

	if err := database.C.Create(&question).Error; err != nil {
		return question, err
	}
	return question, nil
}

func NewQuestionBatch(surveyId uint, questions []models.Question) ([]models.Question, error) {
	if len(questions) == 0 {
		return nil, NewRuleError(ReasonEmptyBatch, "question batch cannot be empty")
	}
	if _, err := GetSurvey(surveyId, false); err != nil {
		return nil, err
	}

	orders := lo.Map(questions, func(q models.Question, _ int) int { return q.Order })
	if len(lo.Uniq(orders)) != len(orders) {
		return nil, NewRuleError(ReasonDuplicateOrder, "question batch contains duplicated orders")
	}

	var count int64
	if err := database.C.Model(&models.Question{}).
		Where("survey_id = ? AND \"order\" IN ?", surveyId, orders).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, NewRuleError(ReasonDuplicateOrder, "one of the orders is already taken")
	}

	for idx := range questions {
		questions[idx].SurveyID = surveyId
	}
	if err := database.C.Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func UpdateQuestion(id uint, patch models.Question) (models.Question, error) {
	question, err := GetQuestion(id)
	if err != nil {
		return question, err
	}

	var count int64
	if err := database.C.Model(&models.Question{}).
		Where("survey_id = ? AND \"order\" = ? AND id != ?", question.SurveyID, patch.Order, id).
		Count(&count).Error; err != nil {
		return question, err
	}
	if count > 0 {
		return question, NewRuleError(ReasonDuplicateOrder, "another question already uses this order")
	}

	question.Text = patch.Text
	question.Order = patch.Order

	if err := database.C.Save(&question).Error; err != nil {
		return question, err
	}
	return question, nil
}

func DeleteQuestion(id uint) error {
	question, err := GetQuestion(id)
	if err != nil {
		return err
	}

	return database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("question_id = ?", id).Delete(&models.ResponseSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
}
