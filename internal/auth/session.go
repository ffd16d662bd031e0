package auth

import (
	"encoding/gob"
	"net/http"
	"time"

	"github.com/antonlindstrom/pgstore"
	"github.com/gorilla/sessions"

	"main/internal/model"
)

const (
	SessionName = "kudos_session"

	sessionDataKey = "data"

	// CacheTTL bounds how long a computed summary is served from the
	// session without recomputation.
	CacheTTL = 10 * time.Minute
)

func init() {
	gob.Register(&SessionData{})
}

// SessionData is everything this service keeps in a browser session.
// One typed struct under one key, so a missing or renamed field is a
// compile error instead of a runtime surprise.
type SessionData struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time

	// OAuthState is the anti-CSRF nonce, set on login and cleared on
	// callback. OAuthSession carries the marshaled provider session
	// between the two requests.
	OAuthState   string
	OAuthSession string

	Athlete *model.AthleteProfile

	CachedStats *model.StatsSummary
	CachedAt    time.Time
}

// CachedSummary returns the cached stats only strictly within the TTL
// window. All-or-nothing; a stale entry is a plain miss.
func (d *SessionData) CachedSummary(now time.Time) (*model.StatsSummary, bool) {
	if d.CachedStats == nil || d.CachedAt.IsZero() {
		return nil, false
	}
	if now.Sub(d.CachedAt) >= CacheTTL {
		return nil, false
	}
	return d.CachedStats, true
}

// StoreSummary overwrites the cached stats and timestamp unconditionally.
func (d *SessionData) StoreSummary(summary model.StatsSummary, now time.Time) {
	d.CachedStats = &summary
	d.CachedAt = now
}

func NewStore(dbURL string, keyPairs ...[]byte) (*pgstore.PGStore, error) {
	store, err := pgstore.NewPGStore(dbURL, keyPairs...)
	if err != nil {
		return nil, err
	}

	store.Options = sessionOptions()
	return store, nil
}

// NewCookieStore backs sessions in preview deployments that run
// without a database.
func NewCookieStore(keyPairs ...[]byte) *sessions.CookieStore {
	store := sessions.NewCookieStore(keyPairs...)
	store.Options = sessionOptions()
	return store
}

func sessionOptions() *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   86400, // tokens never outlive the browser session by more than a day
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func GetSession(store sessions.Store, r *http.Request) (*sessions.Session, error) {
	return store.Get(r, SessionName)
}

// Data extracts the typed payload from a session, handing back a fresh
// one for new sessions.
func Data(session *sessions.Session) *SessionData {
	if d, ok := session.Values[sessionDataKey].(*SessionData); ok {
		return d
	}
	return &SessionData{}
}

// SetData stores the typed payload back onto the session.
func SetData(session *sessions.Session, d *SessionData) {
	session.Values[sessionDataKey] = d
}
