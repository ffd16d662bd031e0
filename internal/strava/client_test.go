package strava

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAthlete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":42,"firstname":"Ada","lastname":"Lovelace","profile":"https://example.com/a.png"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	athlete, err := client.GetAthlete(context.Background(), "token")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), athlete.ID)
	assert.Equal(t, "Ada", athlete.Firstname)
	assert.Equal(t, "https://example.com/a.png", athlete.Profile)
}

func TestGetAthleteMissingIDIsInvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"firstname":"Nobody"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetAthlete(context.Background(), "token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetAthleteRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetAthlete(context.Background(), "token")

	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestGetActivitiesConcatenatesPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete/activities", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`[{"id":1,"name":"A","kudos_count":2},{"id":2,"name":"B","kudos_count":5}]`))
		case "2":
			_, _ = w.Write([]byte(`[{"id":3,"name":"C","kudos_count":1}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	activities, err := client.GetActivities(context.Background(), "token", 50)

	assert.NoError(t, err)
	if assert.Len(t, activities, 3) {
		assert.Equal(t, int64(1), activities[0].ID)
		assert.Equal(t, int64(3), activities[2].ID)
	}
}

func TestGetActivitiesStopsOnErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`[{"id":1,"name":"A"}]`))
		default:
			// Upstream signals problems with an object payload.
			_, _ = w.Write([]byte(`{"message":"Bad Request","errors":[]}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	activities, err := client.GetActivities(context.Background(), "token", 50)

	assert.NoError(t, err)
	assert.Len(t, activities, 1)
}

func TestGetActivitiesRateLimitFailsWholeCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`[{"id":1,"name":"A"}]`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	activities, err := client.GetActivities(context.Background(), "token", 50)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Nil(t, activities)
}

func TestGetActivityDetailCarriesPolyline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/activities/99", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":99,"name":"Big Climb","kudos_count":9,"distance":5432,"start_date_local":"2024-05-02T10:15:30Z","map":{"polyline":"abc123"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	detail, err := client.GetActivityDetail(context.Background(), "token", 99)

	assert.NoError(t, err)
	assert.Equal(t, "Big Climb", detail.Name)
	assert.Equal(t, "abc123", detail.EncodedPolyline())
}

func TestEncodedPolylineFallsBackToSummary(t *testing.T) {
	var detail ActivityDetail
	detail.Map.SummaryPolyline = "summary_only"

	assert.Equal(t, "summary_only", detail.EncodedPolyline())
}
