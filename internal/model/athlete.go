package model

import "time"

// AthleteProfile is the upstream athlete snapshot we keep around for
// the duration of a session.
type AthleteProfile struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Profile   string `json:"profile"`
}

// TopActivity is the most-kudoed activity of a summary. The polyline is
// only populated when the detail endpoint has been consulted.
type TopActivity struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Kudos      int     `json:"kudos"`
	DistanceKm float64 `json:"distance_km"`
	Date       string  `json:"date"`
	Polyline   string  `json:"polyline,omitempty"`
}

// StatsSummary is the per-athlete aggregate computed from the activity
// history.
type StatsSummary struct {
	TotalActivities int          `json:"total_activities"`
	TotalKudos      int          `json:"total_kudos"`
	AverageKudos    float64      `json:"average_kudos"`
	TotalDistanceKm float64      `json:"total_distance_km"`
	TotalTimeMin    float64      `json:"total_time_min"`
	KudosPerKm      float64      `json:"kudos_per_km"`
	MinPerKudos     float64      `json:"min_per_kudos"`
	MostLoved       *TopActivity `json:"most_loved_activity,omitempty"`
}

// TopActivityID returns the id of the most-loved activity, 0 when the
// summary has none.
func (s StatsSummary) TopActivityID() int64 {
	if s.MostLoved == nil {
		return 0
	}
	return s.MostLoved.ID
}

// AthleteStatsRecord is the persisted per-athlete row behind the
// leaderboard. AverageKudos is recomputed from the totals on every
// write and never stored independently.
type AthleteStatsRecord struct {
	AthleteID       int64     `db:"athlete_id"`
	Firstname       string    `db:"firstname"`
	Lastname        string    `db:"lastname"`
	Profile         string    `db:"profile"`
	TotalKudos      int       `db:"total_kudos"`
	TotalActivities int       `db:"total_activities"`
	AverageKudos    float64   `db:"average_kudos"`
	TotalDistanceKm float64   `db:"total_distance_km"`
	TotalTimeMin    float64   `db:"total_time_min"`
	KudosPerKm      float64   `db:"kudos_per_km"`
	MinPerKudos     float64   `db:"min_per_kudos"`
	TopActivityID   int64     `db:"top_activity_id"`
	LastUpdated     time.Time `db:"last_updated"`
}
