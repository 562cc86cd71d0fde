package services

import "github.com/samber/lo"

type OptionVotes struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
	Total    int64  `json:"total"`
}

type QuestionVotes struct {
	QuestionID uint          `json:"question_id"`
	Text       string        `json:"text"`
	Options    []OptionVotes `json:"options"`
}

type VoteSummary struct {
	SurveyID  uint            `json:"survey_id"`
	Questions []QuestionVotes `json:"questions"`
}

// SummarizeVotes groups the survey's votes by question and option.
func SummarizeVotes(surveyId uint) (VoteSummary, error) {
	if _, err := GetSurvey(surveyId, false); err != nil {
		return VoteSummary{}, err
	}

	counts, err := AggregateVotesBySurvey(surveyId)
	if err != nil {
		return VoteSummary{}, err
	}

	grouped := lo.GroupBy(counts, func(c QuestionOptionCount) uint { return c.QuestionID })
	questionIds := lo.Uniq(lo.Map(counts, func(c QuestionOptionCount, _ int) uint { return c.QuestionID }))

	questions := lo.Map(questionIds, func(questionId uint, _ int) QuestionVotes {
		rows := grouped[questionId]
		return QuestionVotes{
			QuestionID: questionId,
			Text:       rows[0].QuestionText,
			Options: lo.Map(rows, func(row QuestionOptionCount, _ int) OptionVotes {
				return OptionVotes{OptionID: row.OptionID, Text: row.OptionText, Total: row.Total}
			}),
		}
	})

	return VoteSummary{SurveyID: surveyId, Questions: questions}, nil
}
