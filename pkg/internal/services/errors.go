package services

import "fmt"

// Reason codes carried by rule violations so the API layer can hand callers a
// machine-distinguishable cause without parsing prose.
const (
	ReasonSurveyInactive         = "survey_inactive"
	ReasonSurveyExpired          = "survey_expired"
	ReasonQuestionSurveyMismatch = "question_survey_mismatch"
	ReasonOptionQuestionMismatch = "option_question_mismatch"
	ReasonOptionInactive         = "option_inactive"
	ReasonDuplicateTitle         = "duplicate_title"
	ReasonDuplicateOrder         = "duplicate_order"
	ReasonEmptyBatch             = "empty_batch"
)

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s was not found", e.Resource)
}

func NewNotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

type RuleError struct {
	Reason  string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

func NewRuleError(reason, message string) error {
	return &RuleError{Reason: reason, Message: message}
}
