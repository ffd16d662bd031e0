package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	stravaprovider "github.com/markbates/goth/providers/strava"

	"main/internal/auth"
	"main/internal/config"
	"main/internal/database"
	"main/internal/handler"
	"main/internal/middleware"
	"main/internal/strava"
)

// Scopes requested from the upstream platform: enough to read the
// athlete's profile and full activity history.
var oauthScopes = []string{"read", "activity:read_all", "profile:read_all"}

type Server struct {
	*gin.Engine
	sessions sessions.Store
}

// New wires the service. Preview mode swaps the upstream client, the
// stats store and the auth flow for canned stand-ins at this boundary;
// the handlers never branch on the mode.
func New(cfg *config.Config, store database.StatsStore) (*Server, error) {
	r := gin.Default()

	if cfg.FrontendURL != "/" {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = []string{cfg.FrontendURL}
		corsCfg.AllowCredentials = true
		r.Use(cors.New(corsCfg))
	}

	var (
		sessionStore sessions.Store
		client       strava.API
		svc          auth.Service
	)

	if cfg.PreviewMode {
		sessionStore = auth.NewCookieStore([]byte(cfg.SessionSecret))
		client = strava.Stub{}
		store = database.StubStore{}
		svc = &auth.Preview{Store: sessionStore}
	} else {
		pgSessions, err := auth.NewStore(cfg.DatabaseURL, []byte(cfg.SessionSecret))
		if err != nil {
			return nil, err
		}
		sessionStore = pgSessions

		provider := stravaprovider.New(cfg.ClientID, cfg.ClientSecret, cfg.CallbackURL, oauthScopes...)
		goth.UseProviders(provider)

		client = strava.NewClient(cfg.StravaBaseURL)
		svc = auth.NewManager(sessionStore, provider)
	}

	h := handler.New(store, client, svc, cfg)

	r.GET("/", h.Home)
	r.GET("/login", h.Login)
	r.GET("/callback", h.Callback)
	r.GET("/logout", h.Logout)
	r.GET("/api/leaderboard", h.Leaderboard)

	authorized := r.Group("/api")
	authorized.Use(middleware.Auth(svc))
	{
		authorized.GET("/athlete", h.Athlete)
		authorized.GET("/stats/summary", h.StatsSummary)
		authorized.GET("/stats/top-activity", h.TopActivity)
		authorized.GET("/leaderboard/rank", h.Rank)
	}

	return &Server{r, sessionStore}, nil
}
