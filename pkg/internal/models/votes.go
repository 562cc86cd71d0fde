package models

import "time"

type ResponseStatus = string

const (
	ResponseStatusStarted   = ResponseStatus("STARTED")
	ResponseStatusCompleted = ResponseStatus("COMPLETED")
	ResponseStatusAbandoned = ResponseStatus("ABANDONED")
)

// ResponseSession is one respondent's attempt at answering a survey.
// Attribute columns are normalized strings and never null; "unknown" is the
// sentinel for anything the client did not send and we could not infer.
type ResponseSession struct {
	BaseModel

	SurveyID   uint  `json:"survey_id" gorm:"index"`
	QuestionID *uint `json:"question_id"`

	Status          ResponseStatus `json:"status" gorm:"size:16;not null"`
	IPAddress       string         `json:"ip_address" gorm:"size:64"`
	UserAgent       string         `json:"user_agent" gorm:"size:500"`
	DeviceType      string         `json:"device_type" gorm:"size:32"`
	OperatingSystem string         `json:"operating_system" gorm:"size:32"`
	Browser         string         `json:"browser" gorm:"size:32"`
	Source          string         `json:"source" gorm:"size:64"`
	Country         string         `json:"country" gorm:"size:64"`
	State           string         `json:"state" gorm:"size:64"`
	City            string         `json:"city" gorm:"size:64"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Vote is an immutable fact; rows are only removed via the survey delete
// cascade.
type Vote struct {
	BaseModel

	SurveyID   uint `json:"survey_id" gorm:"index"`
	QuestionID uint `json:"question_id"`
	OptionID   uint `json:"option_id"`

	IPAddress string `json:"ip_address" gorm:"size:64"`
	UserAgent string `json:"user_agent" gorm:"size:500"`

	SessionID *uint            `json:"session_id"`
	Session   *ResponseSession `json:"session,omitempty" gorm:"foreignKey:SessionID"`
}
