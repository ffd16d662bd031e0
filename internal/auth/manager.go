package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"

	"main/internal/model"
)

var (
	// ErrUnauthenticated covers a session with no usable token,
	// including a failed refresh.
	ErrUnauthenticated = errors.New("auth: not authenticated")

	// ErrInvalidState is a callback whose state parameter does not
	// match the nonce stored at login. Rejected before any exchange.
	ErrInvalidState = errors.New("auth: oauth state mismatch")

	// ErrMissingCode is a callback without an authorization code.
	ErrMissingCode = errors.New("auth: missing authorization code")

	// ErrExchangeFailed is a code exchange that did not yield an
	// access token.
	ErrExchangeFailed = errors.New("auth: token exchange failed")
)

// Service is the authentication surface the handlers depend on. The
// preview implementation swaps in at this boundary.
type Service interface {
	// LoginURL prepares the session for the OAuth handshake and
	// returns the URL to send the browser to.
	LoginURL(w http.ResponseWriter, r *http.Request) (string, error)

	// Callback completes the handshake and establishes the session.
	Callback(w http.ResponseWriter, r *http.Request) error

	// Token returns a valid access token together with the session
	// data, refreshing an expired token first.
	Token(w http.ResponseWriter, r *http.Request) (string, *SessionData, error)

	// Save persists mutated session data.
	Save(w http.ResponseWriter, r *http.Request, d *SessionData) error

	// Logout drops the session.
	Logout(w http.ResponseWriter, r *http.Request) error
}

// Manager drives the authorization-code flow against the upstream
// provider and keeps the resulting tokens in the caller's session.
type Manager struct {
	Store    sessions.Store
	Provider goth.Provider

	// now is swappable in tests.
	now func() time.Time
}

var _ Service = (*Manager)(nil)

func NewManager(store sessions.Store, provider goth.Provider) *Manager {
	return &Manager{Store: store, Provider: provider, now: time.Now}
}

func (m *Manager) LoginURL(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := GetSession(m.Store, r)
	if err != nil {
		return "", err
	}
	d := Data(session)

	state := uuid.NewString()
	gothSession, err := m.Provider.BeginAuth(state)
	if err != nil {
		return "", err
	}

	authURL, err := gothSession.GetAuthURL()
	if err != nil {
		return "", err
	}

	d.OAuthState = state
	d.OAuthSession = gothSession.Marshal()
	SetData(session, d)
	if err := session.Save(r, w); err != nil {
		return "", err
	}

	return authURL, nil
}

func (m *Manager) Callback(w http.ResponseWriter, r *http.Request) error {
	session, err := GetSession(m.Store, r)
	if err != nil {
		return err
	}
	d := Data(session)

	query := r.URL.Query()

	// The state check happens before anything is exchanged.
	if d.OAuthState == "" || query.Get("state") != d.OAuthState {
		return ErrInvalidState
	}
	if query.Get("code") == "" {
		return ErrMissingCode
	}

	gothSession, err := m.Provider.UnmarshalSession(d.OAuthSession)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	if _, err := gothSession.Authorize(m.Provider, query); err != nil {
		return fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	user, err := m.Provider.FetchUser(gothSession)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if user.AccessToken == "" {
		return ErrExchangeFailed
	}

	d.AccessToken = user.AccessToken
	d.RefreshToken = user.RefreshToken
	d.ExpiresAt = user.ExpiresAt
	d.OAuthState = ""
	d.OAuthSession = ""
	d.Athlete = athleteFromUser(user)

	SetData(session, d)
	return session.Save(r, w)
}

func (m *Manager) Token(w http.ResponseWriter, r *http.Request) (string, *SessionData, error) {
	session, err := GetSession(m.Store, r)
	if err != nil {
		return "", nil, err
	}
	d := Data(session)

	token, refreshed, err := m.EnsureValidToken(d)
	if err != nil {
		return "", nil, err
	}

	if refreshed {
		SetData(session, d)
		if err := session.Save(r, w); err != nil {
			return "", nil, err
		}
	}
	return token, d, nil
}

// EnsureValidToken returns a usable access token, refreshing when the
// recorded expiry has passed. Sessions without expiry metadata get the
// stored token as-is. The boolean reports whether d was mutated.
func (m *Manager) EnsureValidToken(d *SessionData) (string, bool, error) {
	if d.AccessToken == "" {
		return "", false, ErrUnauthenticated
	}
	if d.ExpiresAt.IsZero() || m.now().Before(d.ExpiresAt) {
		return d.AccessToken, false, nil
	}

	token, err := m.Provider.RefreshToken(d.RefreshToken)
	if err != nil {
		return "", false, fmt.Errorf("%w: refresh failed: %v", ErrUnauthenticated, err)
	}

	d.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		d.RefreshToken = token.RefreshToken
	}
	d.ExpiresAt = token.Expiry

	return d.AccessToken, true, nil
}

func (m *Manager) Save(w http.ResponseWriter, r *http.Request, d *SessionData) error {
	return saveData(m.Store, w, r, d)
}

func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	return dropSession(m.Store, w, r)
}

func athleteFromUser(user goth.User) *model.AthleteProfile {
	id, err := strconv.ParseInt(user.UserID, 10, 64)
	if err != nil {
		return nil
	}
	return &model.AthleteProfile{
		ID:        id,
		Firstname: user.FirstName,
		Lastname:  user.LastName,
		Profile:   user.AvatarURL,
	}
}

func saveData(store sessions.Store, w http.ResponseWriter, r *http.Request, d *SessionData) error {
	session, err := GetSession(store, r)
	if err != nil {
		return err
	}
	SetData(session, d)
	return session.Save(r, w)
}

func dropSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, err := GetSession(store, r)
	if err != nil {
		return err
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
