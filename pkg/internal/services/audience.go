package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pulsohq/pulso/pkg/internal/models"
	"github.com/samber/lo"
)

type CategoryValue struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type SurveyAudience struct {
	AudienceBreakdown

	PeakHours []CategoryValue `json:"peak_hours"`
	PeakDays  []CategoryValue `json:"peak_days"`

	AverageAbandonmentSeconds float64 `json:"average_abandonment_seconds"`
	UniqueRespondents         int64   `json:"unique_respondents"`
	DuplicateResponses        int64   `json:"duplicate_responses"`

	SuspiciousActivity []string `json:"suspicious_activity"`
}

// Sessions finishing faster than this are counted as a fraud signal. The
// indicator is advisory only and never blocks a vote.
const suspiciousCompletionSeconds = 5

func GetSurveyAudience(surveyId uint, from, to *time.Time) (SurveyAudience, error) {
	if _, err := GetSurvey(surveyId, false); err != nil {
		return SurveyAudience{}, err
	}

	start, end := resolveRange(from, to, time.Now())
	sessions, err := FindSessionsBySurveyAndRange(surveyId, start, end)
	if err != nil {
		return SurveyAudience{}, err
	}

	return BuildSurveyAudience(sessions), nil
}

// BuildSurveyAudience computes the audience and fraud view from a session
// snapshot.
func BuildSurveyAudience(sessions []models.ResponseSession) SurveyAudience {
	audience := SurveyAudience{
		AudienceBreakdown:  buildAudienceBreakdown(sessions),
		PeakHours:          peakBuckets(sessions, hourBucket, 5),
		PeakDays:           peakBuckets(sessions, weekdayBucket, 7),
		SuspiciousActivity: []string{},
	}

	audience.AverageAbandonmentSeconds = averageAbandonmentSeconds(sessions)

	unique := lo.Uniq(lo.Map(sessions, func(s models.ResponseSession, _ int) string {
		return Normalize(s.IPAddress)
	}))
	audience.UniqueRespondents = int64(len(unique))
	audience.DuplicateResponses = max(0, int64(len(sessions))-audience.UniqueRespondents)

	fast := lo.CountBy(sessions, func(s models.ResponseSession) bool {
		return s.CompletedAt != nil &&
			s.CompletedAt.Sub(s.StartedAt) < suspiciousCompletionSeconds*time.Second
	})
	if fast > 0 {
		audience.SuspiciousActivity = append(audience.SuspiciousActivity,
			fmt.Sprintf("Detected %d responses completed in under %d seconds.", fast, suspiciousCompletionSeconds))
	}

	return audience
}

func hourBucket(s models.ResponseSession) string {
	return s.CreatedAt.Format("15:00")
}

func weekdayBucket(s models.ResponseSession) string {
	return strings.ToUpper(s.CreatedAt.Weekday().String())
}

func peakBuckets(sessions []models.ResponseSession, bucket func(models.ResponseSession) string, limit int) []CategoryValue {
	counts := lo.CountValuesBy(sessions, bucket)

	labels := lo.Keys(counts)
	sort.Strings(labels)
	sort.SliceStable(labels, func(i, j int) bool {
		return counts[labels[i]] > counts[labels[j]]
	})

	return lo.Map(topN(labels, limit), func(label string, _ int) CategoryValue {
		return CategoryValue{Label: label, Count: int64(counts[label])}
	})
}

// averageAbandonmentSeconds measures how long abandoned sessions lasted. The
// end of the attempt is the best signal available: an explicit completion
// timestamp, else the row's creation time, else the start itself (zero
// duration).
func averageAbandonmentSeconds(sessions []models.ResponseSession) float64 {
	var sum float64
	var qualified int
	for _, session := range sessions {
		if session.Status != models.ResponseStatusAbandoned || session.StartedAt.IsZero() {
			continue
		}
		end := session.StartedAt
		if session.CompletedAt != nil {
			end = *session.CompletedAt
		} else if !session.CreatedAt.IsZero() {
			end = session.CreatedAt
		}
		sum += end.Sub(session.StartedAt).Seconds()
		qualified++
	}
	if qualified == 0 {
		return 0
	}
	return sum / float64(qualified)
}
