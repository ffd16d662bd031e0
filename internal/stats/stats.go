// Package stats reduces an athlete's activity history into the summary
// served by the API and stored behind the leaderboard.
package stats

import (
	"context"
	"errors"
	"math"

	"main/internal/model"
	"main/internal/strava"
)

// ErrNoActivities means the upstream fetch succeeded but returned an
// empty history. This is a data-availability problem, not an
// authentication one, and is surfaced as such.
var ErrNoActivities = errors.New("stats: no activities returned")

// Compute reduces activities into a summary. An empty input yields
// all-zero counts and no most-loved activity. Ties for the maximum
// kudos count resolve to the first occurrence in input order.
func Compute(activities []strava.Activity) model.StatsSummary {
	if len(activities) == 0 {
		return model.StatsSummary{}
	}

	var totalKudos, totalMovingSec int
	var totalDistanceM float64
	top := 0
	for i, a := range activities {
		totalKudos += a.KudosCount
		totalDistanceM += a.Distance
		totalMovingSec += a.MovingTime
		if a.KudosCount > activities[top].KudosCount {
			top = i
		}
	}

	summary := model.StatsSummary{
		TotalActivities: len(activities),
		TotalKudos:      totalKudos,
		AverageKudos:    round1(float64(totalKudos) / float64(len(activities))),
		TotalDistanceKm: round2(totalDistanceM / 1000),
		TotalTimeMin:    round1(float64(totalMovingSec) / 60),
	}
	if summary.TotalDistanceKm > 0 {
		summary.KudosPerKm = round2(float64(totalKudos) / summary.TotalDistanceKm)
	}
	if totalKudos > 0 {
		summary.MinPerKudos = round2(summary.TotalTimeMin / float64(totalKudos))
	}

	mostLoved := activities[top]
	summary.MostLoved = &model.TopActivity{
		ID:         mostLoved.ID,
		Name:       mostLoved.Name,
		Kudos:      mostLoved.KudosCount,
		DistanceKm: round2(mostLoved.Distance / 1000),
		Date:       calendarDate(mostLoved.StartDateLocal),
	}

	return summary
}

// Aggregator computes summaries and enriches the most-loved activity
// with its path geometry, which only the detail endpoint carries.
type Aggregator struct {
	Client strava.API
}

// Summarize reduces the activity list and fetches the polyline for the
// single most-loved activity. Detail calls are never made for the rest
// of the history.
func (a *Aggregator) Summarize(ctx context.Context, token string, activities []strava.Activity) (model.StatsSummary, error) {
	if len(activities) == 0 {
		return model.StatsSummary{}, ErrNoActivities
	}

	summary := Compute(activities)

	detail, err := a.Client.GetActivityDetail(ctx, token, summary.MostLoved.ID)
	if err != nil {
		return model.StatsSummary{}, err
	}
	summary.MostLoved.Polyline = detail.EncodedPolyline()

	return summary, nil
}

// TopActivityFromDetail renders a full activity record the way the
// summary presents its most-loved entry.
func TopActivityFromDetail(detail *strava.ActivityDetail) model.TopActivity {
	return model.TopActivity{
		ID:         detail.ID,
		Name:       detail.Name,
		Kudos:      detail.KudosCount,
		DistanceKm: round2(detail.Distance / 1000),
		Date:       calendarDate(detail.StartDateLocal),
		Polyline:   detail.EncodedPolyline(),
	}
}

// calendarDate extracts YYYY-MM-DD from an ISO-8601 local timestamp.
func calendarDate(startDateLocal string) string {
	if len(startDateLocal) < 10 {
		return startDateLocal
	}
	return startDateLocal[:10]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
