package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"main/internal/auth"
	"main/internal/config"
	"main/internal/database"
	"main/internal/middleware"
	"main/internal/model"
	"main/internal/stats"
	"main/internal/strava"
)

type Handler struct {
	store  database.StatsStore
	client strava.API
	svc    auth.Service
	agg    *stats.Aggregator
	cfg    *config.Config

	// now is swappable in tests.
	now func() time.Time
}

func New(store database.StatsStore, client strava.API, svc auth.Service, cfg *config.Config) *Handler {
	return &Handler{
		store:  store,
		client: client,
		svc:    svc,
		agg:    &stats.Aggregator{Client: client},
		cfg:    cfg,
		now:    time.Now,
	}
}

func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "for-the-kudos backend"})
}

func (h *Handler) Login(c *gin.Context) {
	url, err := h.svc.LoginURL(c.Writer, c.Request)
	if err != nil {
		log.Printf("login: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, "/?error=oauth")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *Handler) Callback(c *gin.Context) {
	err := h.svc.Callback(c.Writer, c.Request)
	switch {
	case err == nil:
		c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL())
	case errors.Is(err, auth.ErrMissingCode):
		c.Redirect(http.StatusTemporaryRedirect, "/")
	default:
		// State mismatches and failed exchanges never surface raw to
		// the browser.
		log.Printf("oauth callback: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, "/?error=oauth")
	}
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Writer, c.Request); err != nil {
		log.Printf("logout: %v", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, "/")
}

func (h *Handler) Athlete(c *gin.Context) {
	token, data := h.requestSession(c)

	athlete, err := h.currentAthlete(c, token, data)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, athlete)
}

// StatsSummary serves the athlete's aggregate, cheapest source first:
// the session cache, then a fresh persisted record, then a full
// upstream recomputation that feeds both.
func (h *Handler) StatsSummary(c *gin.Context) {
	token, data := h.requestSession(c)

	if cached, ok := data.CachedSummary(h.now()); ok {
		c.JSON(http.StatusOK, summaryResponse(*cached))
		return
	}

	athlete, err := h.currentAthlete(c, token, data)
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	if rec, err := h.store.GetFreshRecord(c.Request.Context(), athlete.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
		return
	} else if rec != nil {
		c.JSON(http.StatusOK, recordResponse(rec))
		return
	}

	activities, err := h.client.GetActivities(c.Request.Context(), token, strava.DefaultPageSize)
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	summary, err := h.agg.Summarize(c.Request.Context(), token, activities)
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	if err := h.store.Upsert(c.Request.Context(), athlete, summary); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
		return
	}

	data.StoreSummary(summary, h.now())
	if err := h.svc.Save(c.Writer, c.Request, data); err != nil {
		log.Printf("session save: %v", err)
	}

	c.JSON(http.StatusOK, summaryResponse(summary))
}

func (h *Handler) TopActivity(c *gin.Context) {
	token, _ := h.requestSession(c)

	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	detail, err := h.client.GetActivityDetail(c.Request.Context(), token, id)
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	top := stats.TopActivityFromDetail(detail)
	c.JSON(http.StatusOK, top)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.store.Leaderboard(c.Request.Context(), c.Query("sort"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
		return
	}

	entries := make([]leaderboardEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, leaderboardEntry{
			AthleteID:       rec.AthleteID,
			Name:            strings.TrimSpace(rec.Firstname + " " + rec.Lastname),
			Profile:         rec.Profile,
			TotalKudos:      rec.TotalKudos,
			AverageKudos:    rec.AverageKudos,
			TotalActivities: rec.TotalActivities,
		})
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) Rank(c *gin.Context) {
	token, data := h.requestSession(c)

	athlete, err := h.currentAthlete(c, token, data)
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	rank, err := h.store.Rank(c.Request.Context(), athlete.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
		return
	}

	if rank == 0 {
		c.JSON(http.StatusOK, gin.H{"rank": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rank": rank})
}

// requestSession pulls the token and session data the auth middleware
// resolved for this request.
func (h *Handler) requestSession(c *gin.Context) (string, *auth.SessionData) {
	token := c.GetString(middleware.TokenKey)
	if data, ok := c.Get(middleware.SessionKey); ok {
		return token, data.(*auth.SessionData)
	}
	return token, &auth.SessionData{}
}

// currentAthlete returns the session's athlete snapshot, fetching and
// caching it on first use.
func (h *Handler) currentAthlete(c *gin.Context, token string, data *auth.SessionData) (*model.AthleteProfile, error) {
	if data.Athlete != nil {
		return data.Athlete, nil
	}

	athlete, err := h.client.GetAthlete(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}

	data.Athlete = athlete
	if err := h.svc.Save(c.Writer, c.Request, data); err != nil {
		log.Printf("session save: %v", err)
	}
	return athlete, nil
}

func (h *Handler) upstreamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, strava.ErrRateLimited):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	case errors.Is(err, stats.ErrNoActivities):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no activities"})
	case errors.Is(err, strava.ErrInvalidToken), errors.Is(err, auth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		log.Printf("upstream: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream error"})
	}
}

func (h *Handler) dashboardURL() string {
	base := strings.TrimRight(h.cfg.FrontendURL, "/")
	return base + "/dashboard"
}

type statsPayload struct {
	TotalActivities int                `json:"total_activities"`
	TotalKudos      int                `json:"total_kudos"`
	AverageKudos    float64            `json:"average_kudos"`
	TotalDistanceKm float64            `json:"total_distance_km"`
	TotalTimeMin    float64            `json:"total_time_min"`
	KudosPerKm      float64            `json:"kudos_per_km"`
	MinPerKudos     float64            `json:"min_per_kudos"`
	TopActivityID   int64              `json:"top_activity_id"`
	MostLoved       *model.TopActivity `json:"most_loved_activity,omitempty"`
}

type leaderboardEntry struct {
	AthleteID       int64   `json:"athlete_id"`
	Name            string  `json:"name"`
	Profile         string  `json:"profile"`
	TotalKudos      int     `json:"total_kudos"`
	AverageKudos    float64 `json:"average_kudos"`
	TotalActivities int     `json:"total_activities"`
}

func summaryResponse(s model.StatsSummary) statsPayload {
	return statsPayload{
		TotalActivities: s.TotalActivities,
		TotalKudos:      s.TotalKudos,
		AverageKudos:    s.AverageKudos,
		TotalDistanceKm: s.TotalDistanceKm,
		TotalTimeMin:    s.TotalTimeMin,
		KudosPerKm:      s.KudosPerKm,
		MinPerKudos:     s.MinPerKudos,
		TopActivityID:   s.TopActivityID(),
		MostLoved:       s.MostLoved,
	}
}

// recordResponse renders a persisted row in the same shape as a live
// summary. The most-loved detail is not persisted, only its id.
func recordResponse(rec *model.AthleteStatsRecord) statsPayload {
	return statsPayload{
		TotalActivities: rec.TotalActivities,
		TotalKudos:      rec.TotalKudos,
		AverageKudos:    rec.AverageKudos,
		TotalDistanceKm: rec.TotalDistanceKm,
		TotalTimeMin:    rec.TotalTimeMin,
		KudosPerKm:      rec.KudosPerKm,
		MinPerKudos:     rec.MinPerKudos,
		TopActivityID:   rec.TopActivityID,
	}
}
