package services

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/pulsohq/pulso/pkg/internal/database"
	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/samber/lo"
)

// The dashboards are read-committed snapshots: each sub-metric comes from its
// own query and a write landing mid-computation may skew them slightly
// against each other. That is accepted; nothing here blocks ingestion.

type SurveyMetric struct {
	SurveyID uint    `json:"survey_id"`
	Title    string  `json:"title"`
	Value    float64 `json:"value"`
}

type SurveySummary struct {
	SurveyID  uint       `json:"survey_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiredAt *time.Time `json:"expired_at"`
}

type OverviewTotals struct {
	Surveys         int64 `json:"surveys"`
	ActiveSurveys   int64 `json:"active_surveys"`
	InactiveSurveys int64 `json:"inactive_surveys"`
	Responses       int64 `json:"responses"`
}

type OverviewGrowth struct {
	ResponsesLast7Days  int64 `json:"responses_last_7_days"`
	ResponsesLast30Days int64 `json:"responses_last_30_days"`
}

type OverviewRates struct {
	Completion  float64 `json:"completion"`
	Abandonment float64 `json:"abandonment"`
}

type OverviewRankings struct {
	MostResponded      []SurveyMetric  `json:"most_responded"`
	HighestCompletion  []SurveyMetric  `json:"highest_completion"`
	HighestAbandonment []SurveyMetric  `json:"highest_abandonment"`
	RecentlyCreated    []SurveySummary `json:"recently_created"`
	NearExpiration     []SurveySummary `json:"near_expiration"`
}

type DashboardOverview struct {
	Totals                 OverviewTotals   `json:"totals"`
	Growth                 OverviewGrowth   `json:"growth"`
	Rates                  OverviewRates    `json:"rates"`
	AverageResponseSeconds float64          `json:"average_response_seconds"`
	Rankings               OverviewRankings `json:"rankings"`
}

// SurveyAggregate is one survey's session tally, produced by a single grouped
// query so the three counters are mutually consistent.
type SurveyAggregate struct {
	SurveyID  uint  `json:"survey_id"`
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Abandoned int64 `json:"abandoned"`
}

const rankingSize = 5

func GetDashboardOverview() (DashboardOverview, error) {
	var out DashboardOverview

	if err := database.C.Model(&models.Survey{}).Count(&out.Totals.Surveys).Error; err != nil {
		return out, err
	}
	if err := database.C.Model(&models.Survey{}).Where("is_active = ?", true).
		Count(&out.Totals.ActiveSurveys).Error; err != nil {
		return out, err
	}
	out.Totals.InactiveSurveys = max(0, out.Totals.Surveys-out.Totals.ActiveSurveys)

	if err := database.C.Model(&models.ResponseSession{}).Count(&out.Totals.Responses).Error; err != nil {
		return out, err
	}

	now := time.Now()
	if err := database.C.Model(&models.ResponseSession{}).
		Where("created_at > ?", now.AddDate(0, 0, -7)).
		Count(&out.Growth.ResponsesLast7Days).Error; err != nil {
		return out, err
	}
	if err := database.C.Model(&models.ResponseSession{}).
		Where("created_at > ?", now.AddDate(0, 0, -30)).
		Count(&out.Growth.ResponsesLast30Days).Error; err != nil {
		return out, err
	}

	var completed, abandoned int64
	if err := database.C.Model(&models.ResponseSession{}).
		Where("status = ?", models.ResponseStatusCompleted).Count(&completed).Error; err != nil {
		return out, err
	}
	if err := database.C.Model(&models.ResponseSession{}).
		Where("status = ?", models.ResponseStatusAbandoned).Count(&abandoned).Error; err != nil {
		return out, err
	}
	out.Rates.Completion = rate(completed, out.Totals.Responses)
	out.Rates.Abandonment = rate(abandoned, out.Totals.Responses)

	average, err := QueryAverageCompletionSeconds()
	if err != nil {
		return out, err
	}
	out.AverageResponseSeconds = average

	aggregates, err := AggregateSessionsBySurvey()
	if err != nil {
		return out, err
	}
	titles, err := surveyTitles(lo.Map(aggregates, func(a SurveyAggregate, _ int) uint { return a.SurveyID }))
	if err != nil {
		return out, err
	}

	out.Rankings = buildRankings(aggregates, titles)

	var recent []models.Survey
	if err := database.C.Order("created_at DESC").Limit(rankingSize).Find(&recent).Error; err != nil {
		return out, err
	}
	out.Rankings.RecentlyCreated = lo.Map(recent, func(s models.Survey, _ int) SurveySummary {
		return toSummary(s)
	})

	var expiring []models.Survey
	if err := database.C.Where("expired_at > ?", now).
		Order("expired_at ASC").Limit(rankingSize).Find(&expiring).Error; err != nil {
		return out, err
	}
	out.Rankings.NearExpiration = lo.Map(expiring, func(s models.Survey, _ int) SurveySummary {
		return toSummary(s)
	})

	return out, nil
}

// QueryAverageCompletionSeconds computes the mean completion duration in the
// database, so the overview never materializes the sessions table. The
// duration expression is the only dialect-specific SQL in the repo.
func QueryAverageCompletionSeconds() (float64, error) {
	expr := "EXTRACT(EPOCH FROM (completed_at - started_at))"
	if database.C.Dialector.Name() == "sqlite" {
		expr = "(julianday(completed_at) - julianday(started_at)) * 86400.0"
	}

	var average sql.NullFloat64
	if err := database.C.Model(&models.ResponseSession{}).
		Select("AVG(" + expr + ")").
		Where("completed_at IS NOT NULL").
		Scan(&average).Error; err != nil {
		return 0, err
	}
	if !average.Valid {
		return 0, nil
	}
	return average.Float64, nil
}

func AggregateSessionsBySurvey() ([]SurveyAggregate, error) {
	var aggregates []SurveyAggregate
	err := database.C.Model(&models.ResponseSession{}).
		Select("survey_id",
			"COUNT(id) AS total",
			"SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END) AS completed",
			"SUM(CASE WHEN status = 'ABANDONED' THEN 1 ELSE 0 END) AS abandoned").
		Group("survey_id").
		Scan(&aggregates).Error
	return aggregates, err
}

// buildRankings derives the three rate/volume rankings from the per-survey
// aggregates. Sorts are stable so ties keep whatever order storage returned;
// callers must not read anything into tie order.
func buildRankings(aggregates []SurveyAggregate, titles map[uint]string) OverviewRankings {
	var rankings OverviewRankings

	mostResponded := make([]SurveyAggregate, len(aggregates))
	copy(mostResponded, aggregates)
	sort.SliceStable(mostResponded, func(i, j int) bool {
		return mostResponded[i].Total > mostResponded[j].Total
	})
	rankings.MostResponded = lo.Map(topN(mostResponded, rankingSize), func(a SurveyAggregate, _ int) SurveyMetric {
		return toMetric(a.SurveyID, titles, float64(a.Total))
	})

	withResponses := lo.Filter(aggregates, func(a SurveyAggregate, _ int) bool { return a.Total > 0 })

	byCompletion := make([]SurveyAggregate, len(withResponses))
	copy(byCompletion, withResponses)
	sort.SliceStable(byCompletion, func(i, j int) bool {
		return rate(byCompletion[i].Completed, byCompletion[i].Total) > rate(byCompletion[j].Completed, byCompletion[j].Total)
	})
	rankings.HighestCompletion = lo.Map(topN(byCompletion, rankingSize), func(a SurveyAggregate, _ int) SurveyMetric {
		return toMetric(a.SurveyID, titles, rate(a.Completed, a.Total))
	})

	byAbandonment := make([]SurveyAggregate, len(withResponses))
	copy(byAbandonment, withResponses)
	sort.SliceStable(byAbandonment, func(i, j int) bool {
		return rate(byAbandonment[i].Abandoned, byAbandonment[i].Total) > rate(byAbandonment[j].Abandoned, byAbandonment[j].Total)
	})
	rankings.HighestAbandonment = lo.Map(topN(byAbandonment, rankingSize), func(a SurveyAggregate, _ int) SurveyMetric {
		return toMetric(a.SurveyID, titles, rate(a.Abandoned, a.Total))
	})

	return rankings
}

type OptionStats struct {
	OptionID   uint    `json:"option_id"`
	Text       string  `json:"text"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
}

type QuestionStats struct {
	QuestionID uint          `json:"question_id"`
	Text       string        `json:"text"`
	Options    []OptionStats `json:"options"`
}

type DayPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type HourPoint struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}

type TimeSeries struct {
	Daily  []DayPoint  `json:"daily"`
	Hourly []HourPoint `json:"hourly"`
}

type AudienceBreakdown struct {
	Devices          map[string]int64 `json:"devices"`
	OperatingSystems map[string]int64 `json:"operating_systems"`
	Browsers         map[string]int64 `json:"browsers"`
	Sources          map[string]int64 `json:"sources"`
	Countries        map[string]int64 `json:"countries"`
	States           map[string]int64 `json:"states"`
	Cities           map[string]int64 `json:"cities"`
}

type SurveyDashboardOverview struct {
	TotalResponses         int64   `json:"total_responses"`
	CompletionRate         float64 `json:"completion_rate"`
	AbandonmentRate        float64 `json:"abandonment_rate"`
	AverageResponseSeconds float64 `json:"average_response_seconds"`
	MostAbandonedQuestion  *string `json:"most_abandoned_question"`
	PredominantDevice      string  `json:"predominant_device"`
}

type SurveyDashboard struct {
	Overview    SurveyDashboardOverview `json:"overview"`
	Questions   []QuestionStats         `json:"questions"`
	TimeSeries  TimeSeries              `json:"time_series"`
	Audience    AudienceBreakdown       `json:"audience"`
	Limitations []string                `json:"limitations"`
}

// QuestionOptionCount is one (question, option) vote tally with the display
// texts resolved, as returned by the grouped vote query.
type QuestionOptionCount struct {
	QuestionID   uint   `json:"question_id"`
	QuestionText string `json:"question_text"`
	OptionID     uint   `json:"option_id"`
	OptionText   string `json:"option_text"`
	Total        int64  `json:"total"`
}

func GetSurveyDashboard(surveyId uint, from, to *time.Time) (SurveyDashboard, error) {
	if _, err := GetSurvey(surveyId, false); err != nil {
		return SurveyDashboard{}, err
	}

	start, end := resolveRange(from, to, time.Now())
	sessions, err := FindSessionsBySurveyAndRange(surveyId, start, end)
	if err != nil {
		return SurveyDashboard{}, err
	}
	counts, err := AggregateVotesBySurvey(surveyId)
	if err != nil {
		return SurveyDashboard{}, err
	}

	return BuildSurveyDashboard(sessions, counts), nil
}

// BuildSurveyDashboard is a pure function of the snapshot; everything below
// is derived from the sessions and vote tallies it receives.
func BuildSurveyDashboard(sessions []models.ResponseSession, counts []QuestionOptionCount) SurveyDashboard {
	total := int64(len(sessions))
	completed := int64(len(lo.Filter(sessions, func(s models.ResponseSession, _ int) bool {
		return s.Status == models.ResponseStatusCompleted
	})))
	abandoned := int64(len(lo.Filter(sessions, func(s models.ResponseSession, _ int) bool {
		return s.Status == models.ResponseStatusAbandoned
	})))

	timed := lo.Filter(sessions, func(s models.ResponseSession, _ int) bool {
		return s.CompletedAt != nil
	})

	overview := SurveyDashboardOverview{
		TotalResponses:         total,
		CompletionRate:         rate(completed, total),
		AbandonmentRate:        rate(abandoned, total),
		AverageResponseSeconds: averageCompletionSeconds(timed),
		MostAbandonedQuestion:  mostAbandonedQuestion(sessions, counts),
		PredominantDevice:      predominantDevice(sessions),
	}

	return SurveyDashboard{
		Overview:   overview,
		Questions:  buildQuestionStats(counts),
		TimeSeries: buildTimeSeries(sessions),
		Audience:   buildAudienceBreakdown(sessions),
		Limitations: []string{
			"Option combinations are not yet available for multi-select questions.",
		},
	}
}

func FindSessionsBySurveyAndRange(surveyId uint, start, end time.Time) ([]models.ResponseSession, error) {
	var sessions []models.ResponseSession
	err := database.C.
		Where("survey_id = ? AND created_at BETWEEN ? AND ?", surveyId, start, end).
		Order("created_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func AggregateVotesBySurvey(surveyId uint) ([]QuestionOptionCount, error) {
	var counts []QuestionOptionCount
	err := database.C.Table("votes").
		Select("votes.question_id AS question_id",
			"questions.text AS question_text",
			"votes.option_id AS option_id",
			"options.text AS option_text",
			"COUNT(votes.id) AS total").
		Joins("JOIN questions ON questions.id = votes.question_id").
		Joins("JOIN options ON options.id = votes.option_id").
		Where("votes.survey_id = ? AND votes.deleted_at IS NULL", surveyId).
		Group("votes.question_id, questions.text, votes.option_id, options.text").
		Order("votes.question_id ASC").
		Scan(&counts).Error
	return counts, err
}

// resolveRange applies the default 30-day window and silently corrects an
// inverted range instead of failing the request.
func resolveRange(from, to *time.Time, now time.Time) (time.Time, time.Time) {
	end := now
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		start = end.AddDate(0, 0, -30)
	}
	return start, end
}

func buildQuestionStats(counts []QuestionOptionCount) []QuestionStats {
	grouped := lo.GroupBy(counts, func(c QuestionOptionCount) uint { return c.QuestionID })
	questionIds := lo.Uniq(lo.Map(counts, func(c QuestionOptionCount, _ int) uint { return c.QuestionID }))

	stats := make([]QuestionStats, 0, len(questionIds))
	for _, questionId := range questionIds {
		options := grouped[questionId]
		questionTotal := lo.SumBy(options, func(c QuestionOptionCount) int64 { return c.Total })

		optionStats := lo.Map(options, func(c QuestionOptionCount, _ int) OptionStats {
			return OptionStats{
				OptionID:   c.OptionID,
				Text:       c.OptionText,
				Total:      c.Total,
				Percentage: rate(c.Total, questionTotal),
			}
		})
		sort.SliceStable(optionStats, func(i, j int) bool {
			return optionStats[i].Total > optionStats[j].Total
		})

		stats = append(stats, QuestionStats{
			QuestionID: questionId,
			Text:       options[0].QuestionText,
			Options:    optionStats,
		})
	}
	return stats
}

// buildTimeSeries buckets sessions by calendar date and by hour of day.
// Empty buckets are omitted, not zero-filled.
func buildTimeSeries(sessions []models.ResponseSession) TimeSeries {
	daily := lo.CountValuesBy(sessions, func(s models.ResponseSession) string {
		return s.CreatedAt.Format("2006-01-02")
	})
	hourly := lo.CountValuesBy(sessions, func(s models.ResponseSession) string {
		return s.CreatedAt.Format("15:00")
	})

	days := lo.Keys(daily)
	sort.Strings(days)
	hours := lo.Keys(hourly)
	sort.Strings(hours)

	return TimeSeries{
		Daily: lo.Map(days, func(day string, _ int) DayPoint {
			return DayPoint{Date: day, Count: int64(daily[day])}
		}),
		Hourly: lo.Map(hours, func(hour string, _ int) HourPoint {
			return HourPoint{Hour: hour, Count: int64(hourly[hour])}
		}),
	}
}

func buildAudienceBreakdown(sessions []models.ResponseSession) AudienceBreakdown {
	return AudienceBreakdown{
		Devices:          countByDimension(sessions, func(s models.ResponseSession) string { return s.DeviceType }),
		OperatingSystems: countByDimension(sessions, func(s models.ResponseSession) string { return s.OperatingSystem }),
		Browsers:         countByDimension(sessions, func(s models.ResponseSession) string { return s.Browser }),
		Sources:          countByDimension(sessions, func(s models.ResponseSession) string { return s.Source }),
		Countries:        countByDimension(sessions, func(s models.ResponseSession) string { return s.Country }),
		States:           countByDimension(sessions, func(s models.ResponseSession) string { return s.State }),
		Cities:           countByDimension(sessions, func(s models.ResponseSession) string { return s.City }),
	}
}

func countByDimension(sessions []models.ResponseSession, dimension func(models.ResponseSession) string) map[string]int64 {
	out := make(map[string]int64)
	for _, session := range sessions {
		out[Normalize(dimension(session))]++
	}
	return out
}

// mostAbandonedQuestion returns the text of the question with the most
// abandoned sessions; ties go to whichever question was encountered first.
func mostAbandonedQuestion(sessions []models.ResponseSession, counts []QuestionOptionCount) *string {
	byQuestion := make(map[uint]int64)
	var order []uint
	for _, session := range sessions {
		if session.Status != models.ResponseStatusAbandoned || session.QuestionID == nil {
			continue
		}
		if _, seen := byQuestion[*session.QuestionID]; !seen {
			order = append(order, *session.QuestionID)
		}
		byQuestion[*session.QuestionID]++
	}
	if len(order) == 0 {
		return nil
	}

	best := order[0]
	for _, questionId := range order {
		if byQuestion[questionId] > byQuestion[best] {
			best = questionId
		}
	}

	for _, count := range counts {
		if count.QuestionID == best {
			text := count.QuestionText
			return &text
		}
	}
	// Question has abandonments but no votes yet; fall back to the raw id.
	text := questionLabel(best)
	return &text
}

func predominantDevice(sessions []models.ResponseSession) string {
	byDevice := make(map[string]int64)
	var order []string
	for _, session := range sessions {
		device := Normalize(session.DeviceType)
		if _, seen := byDevice[device]; !seen {
			order = append(order, device)
		}
		byDevice[device]++
	}
	if len(order) == 0 {
		return UnknownValue
	}

	best := order[0]
	for _, device := range order {
		if byDevice[device] > byDevice[best] {
			best = device
		}
	}
	return best
}

func averageCompletionSeconds(sessions []models.ResponseSession) float64 {
	var sum float64
	var qualified int
	for _, session := range sessions {
		if session.CompletedAt == nil {
			continue
		}
		sum += session.CompletedAt.Sub(session.StartedAt).Seconds()
		qualified++
	}
	if qualified == 0 {
		return 0
	}
	return sum / float64(qualified)
}

func surveyTitles(ids []uint) (map[uint]string, error) {
	if len(ids) == 0 {
		return map[uint]string{}, nil
	}
	var surveys []models.Survey
	if err := database.C.Where("id IN ?", ids).Find(&surveys).Error; err != nil {
		return nil, err
	}
	return lo.SliceToMap(surveys, func(s models.Survey) (uint, string) {
		return s.ID, s.Title
	}), nil
}

func toMetric(surveyId uint, titles map[uint]string, value float64) SurveyMetric {
	title, ok := titles[surveyId]
	if !ok {
		title = surveyLabel(surveyId)
	}
	return SurveyMetric{SurveyID: surveyId, Title: title, Value: value}
}

func toSummary(survey models.Survey) SurveySummary {
	return SurveySummary{
		SurveyID:  survey.ID,
		Title:     survey.Title,
		CreatedAt: survey.CreatedAt,
		ExpiredAt: survey.ExpiredAt,
	}
}

func topN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func rate(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func surveyLabel(id uint) string {
	return fmt.Sprintf("Survey %d", id)
}

func questionLabel(id uint) string {
	return fmt.Sprintf("Question %d", id)
}
