package models

import (
	"time"

	"gorm.io/datatypes"
)

type Survey struct {
	BaseModel

	Title       string            `json:"title" gorm:"uniqueIndex;size:255;not null"`
	Description string            `json:"description" gorm:"size:1000"`
	IsActive    bool              `json:"is_active"`
	ExpiredAt   *time.Time        `json:"expired_at"`
	Metadata    datatypes.JSONMap `json:"metadata"`

	Questions []Question `json:"questions" gorm:"foreignKey:SurveyID"`
}

type Question struct {
	BaseModel

	Text  string `json:"text" gorm:"size:500;not null"`
	Order int    `json:"order" gorm:"not null"`

	SurveyID uint    `json:"survey_id"`
	Survey   *Survey `json:"survey,omitempty"`

	Options []Option `json:"options" gorm:"foreignKey:QuestionID"`
}

type Option struct {
	BaseModel

	Text     string `json:"text" gorm:"size:255;not null"`
	IsActive bool   `json:"is_active"`

	QuestionID uint      `json:"question_id"`
	Question   *Question `json:"question,omitempty"`
}
