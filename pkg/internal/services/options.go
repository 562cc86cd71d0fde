package services

import (
	"errors"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"gorm.io/gorm"
)

func ListOption(questionId uint, take, offset int, onlyActive bool) ([]models.Option, int64, error) {
	tx := database.C.Model(&models.Option{}).Where("question_id = ?", questionId)
	if onlyActive {
		tx = tx.Where("is_active = ?", true)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var options []models.Option
	if err := tx.Order("id ASC").Offset(offset).Limit(take).Find(&options).Error; err != nil {
		return nil, 0, err
	}
	return options, count, nil
}

func GetOption(id uint) (models.Option, error) {
	var option models.Option
	if err := database.C.Where("id = ?", id).First(&option).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return option, NewNotFound("option")
		}
		return option, err
	}
	return option, nil
}

func NewOption(option models.Option) (models.Option, error) {
	if _, err := GetQuestion(option.QuestionID); err != nil {
		return option, err
	}

	if err := database.C.Create(&option).Error; err != nil {
		return option, err
	}
	return option, nil
}

func NewOptionBatch(questionId uint, options []models.Option) ([]models.Option, error) {
	if len(options) == 0 {
		return nil, NewRuleError(ReasonEmptyBatch, "option batch cannot be empty")
	}
	if _, err := GetQuestion(questionId); err != nil {
		return nil, err
	}

	for idx := range options {
		options[idx].QuestionID = questionId
	}
	if err := database.C.Create(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func UpdateOption(id uint, patch models.Option) (models.Option, error) {
	option, err := GetOption(id)
	if err != nil {
		return option, err
	}

	option.Text = patch.Text
	option.IsActive = patch.IsActive

	if err := database.C.Save(&option).Error; err != nil {
		return option, err
	}
	return option, nil
}

func DeleteOption(id uint) error {
	option, err := GetOption(id)
	if err != nil {
		return err
	}
	return database.C.Delete(&option).Error
}
