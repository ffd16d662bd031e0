package strava

import (
	"context"

	"main/internal/model"
)

// Stub stands in for the live API in preview deployments. Every call
// succeeds with fixed placeholder data so the rest of the service runs
// branch-free.
type Stub struct{}

var _ API = Stub{}

func (Stub) GetAthlete(ctx context.Context, token string) (*model.AthleteProfile, error) {
	return &model.AthleteProfile{
		ID:        0,
		Firstname: "Preview",
		Lastname:  "Athlete",
	}, nil
}

func (Stub) GetActivities(ctx context.Context, token string, pageSize int) ([]Activity, error) {
	return []Activity{
		{
			ID:             1,
			Name:           "Preview Ride",
			Type:           "Ride",
			StartDateLocal: "2024-01-01T08:00:00Z",
		},
	}, nil
}

func (Stub) GetActivityDetail(ctx context.Context, token string, activityID int64) (*ActivityDetail, error) {
	return &ActivityDetail{Activity: Activity{
		ID:             activityID,
		Name:           "Preview Ride",
		Type:           "Ride",
		StartDateLocal: "2024-01-01T08:00:00Z",
	}}, nil
}
