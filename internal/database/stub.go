package database

import (
	"context"

	"main/internal/model"
)

// StubStore backs preview deployments that run without a database.
// Reads come up empty and writes are accepted and dropped.
type StubStore struct{}

var _ StatsStore = StubStore{}

func (StubStore) GetFreshRecord(ctx context.Context, athleteID int64) (*model.AthleteStatsRecord, error) {
	return nil, nil
}

func (StubStore) Upsert(ctx context.Context, athlete *model.AthleteProfile, summary model.StatsSummary) error {
	return nil
}

func (StubStore) Leaderboard(ctx context.Context, sortKey string, limit int) ([]model.AthleteStatsRecord, error) {
	return []model.AthleteStatsRecord{}, nil
}

func (StubStore) Rank(ctx context.Context, athleteID int64) (int, error) {
	return 0, nil
}
