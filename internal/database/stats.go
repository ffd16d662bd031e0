package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"main/internal/model"
)

// FreshnessWindow is how long a stored summary is served without going
// back to the upstream API. Independent from the per-session cache TTL.
const FreshnessWindow = 6 * time.Hour

const defaultSortColumn = "total_kudos"

// sortColumns whitelists the leaderboard orderings. Anything else
// falls back to total_kudos; that fallback is the documented default,
// not an error.
var sortColumns = map[string]string{
	"total_kudos":      "total_kudos",
	"average_kudos":    "average_kudos",
	"total_activities": "total_activities",
}

// SortColumn resolves a requested sort key to a safe column name.
func SortColumn(key string) string {
	if col, ok := sortColumns[key]; ok {
		return col
	}
	return defaultSortColumn
}

// StatsStore is the persistence surface for athlete summaries. The
// preview stub implements the same interface.
type StatsStore interface {
	GetFreshRecord(ctx context.Context, athleteID int64) (*model.AthleteStatsRecord, error)
	Upsert(ctx context.Context, athlete *model.AthleteProfile, summary model.StatsSummary) error
	Leaderboard(ctx context.Context, sortKey string, limit int) ([]model.AthleteStatsRecord, error)
	Rank(ctx context.Context, athleteID int64) (int, error)
}

type Store struct {
	db *sql.DB

	// now is swappable in tests.
	now func() time.Time
}

var _ StatsStore = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

const recordColumns = `athlete_id, firstname, lastname, profile, total_kudos, total_activities,
	average_kudos, total_distance_km, total_time_min, kudos_per_km, min_per_kudos,
	top_activity_id, last_updated`

// GetFreshRecord returns the stored record only when it is younger than
// the freshness window. A missing or stale row is not an error.
func (s *Store) GetFreshRecord(ctx context.Context, athleteID int64) (*model.AthleteStatsRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM athlete_stats WHERE athlete_id = $1", athleteID)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if s.now().Sub(rec.LastUpdated) >= FreshnessWindow {
		return nil, nil
	}
	return rec, nil
}

// Upsert writes the athlete's latest summary, creating the row on first
// sight. The average is recomputed from the totals here so it can never
// drift from them.
func (s *Store) Upsert(ctx context.Context, athlete *model.AthleteProfile, summary model.StatsSummary) error {
	average := 0.0
	if summary.TotalActivities > 0 {
		average = float64(summary.TotalKudos) / float64(summary.TotalActivities)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO athlete_stats (athlete_id, firstname, lastname, profile, total_kudos,
	total_activities, average_kudos, total_distance_km, total_time_min,
	kudos_per_km, min_per_kudos, top_activity_id, last_updated)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (athlete_id) DO UPDATE SET
	firstname = EXCLUDED.firstname,
	lastname = EXCLUDED.lastname,
	profile = EXCLUDED.profile,
	total_kudos = EXCLUDED.total_kudos,
	total_activities = EXCLUDED.total_activities,
	average_kudos = EXCLUDED.average_kudos,
	total_distance_km = EXCLUDED.total_distance_km,
	total_time_min = EXCLUDED.total_time_min,
	kudos_per_km = EXCLUDED.kudos_per_km,
	min_per_kudos = EXCLUDED.min_per_kudos,
	top_activity_id = EXCLUDED.top_activity_id,
	last_updated = EXCLUDED.last_updated`,
		athlete.ID, athlete.Firstname, athlete.Lastname, athlete.Profile,
		summary.TotalKudos, summary.TotalActivities, average,
		summary.TotalDistanceKm, summary.TotalTimeMin,
		summary.KudosPerKm, summary.MinPerKudos,
		summary.TopActivityID(), s.now())
	return err
}

func (s *Store) Leaderboard(ctx context.Context, sortKey string, limit int) ([]model.AthleteStatsRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := fmt.Sprintf(
		"SELECT "+recordColumns+" FROM athlete_stats ORDER BY %s DESC, athlete_id ASC LIMIT $1",
		SortColumn(sortKey))

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AthleteStatsRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Rank returns the athlete's 1-based position in the total_kudos
// ordering, 0 when the athlete has no record.
func (s *Store) Rank(ctx context.Context, athleteID int64) (int, error) {
	var kudos int
	err := s.db.QueryRowContext(ctx,
		"SELECT total_kudos FROM athlete_stats WHERE athlete_id = $1", athleteID).Scan(&kudos)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}

	var rank int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) + 1 FROM athlete_stats WHERE total_kudos > $1", kudos).Scan(&rank)
	if err != nil {
		return 0, err
	}
	return rank, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*model.AthleteStatsRecord, error) {
	rec := &model.AthleteStatsRecord{}
	err := row.Scan(&rec.AthleteID, &rec.Firstname, &rec.Lastname, &rec.Profile,
		&rec.TotalKudos, &rec.TotalActivities, &rec.AverageKudos,
		&rec.TotalDistanceKm, &rec.TotalTimeMin, &rec.KudosPerKm, &rec.MinPerKudos,
		&rec.TopActivityID, &rec.LastUpdated)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
