package database

import (
	"database/sql"

	_ "github.com/lib/pq"
)

func New(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the stats table when it does not exist yet.
// Single table, single-row writes, so no migration tooling is carried.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS athlete_stats (
	athlete_id BIGINT PRIMARY KEY,
	firstname TEXT NOT NULL DEFAULT '',
	lastname TEXT NOT NULL DEFAULT '',
	profile TEXT NOT NULL DEFAULT '',
	total_kudos INTEGER NOT NULL DEFAULT 0,
	total_activities INTEGER NOT NULL DEFAULT 0,
	average_kudos DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_time_min DOUBLE PRECISION NOT NULL DEFAULT 0,
	kudos_per_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	min_per_kudos DOUBLE PRECISION NOT NULL DEFAULT 0,
	top_activity_id BIGINT NOT NULL DEFAULT 0,
	last_updated TIMESTAMPTZ NOT NULL
)`)
	return err
}
