package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"main/internal/model"
)

const previewToken = "preview-token"

// Preview replaces the OAuth flow in preview deployments: "logging in"
// just establishes a placeholder session, no upstream handshake.
type Preview struct {
	Store sessions.Store
}

var _ Service = (*Preview)(nil)

func (p *Preview) LoginURL(w http.ResponseWriter, r *http.Request) (string, error) {
	// Skip the provider entirely and land on the callback directly.
	return "/callback", nil
}

func (p *Preview) Callback(w http.ResponseWriter, r *http.Request) error {
	session, err := GetSession(p.Store, r)
	if err != nil {
		return err
	}
	d := Data(session)
	d.AccessToken = previewToken
	d.Athlete = &model.AthleteProfile{Firstname: "Preview", Lastname: "Athlete"}
	SetData(session, d)
	return session.Save(r, w)
}

func (p *Preview) Token(w http.ResponseWriter, r *http.Request) (string, *SessionData, error) {
	session, err := GetSession(p.Store, r)
	if err != nil {
		return "", nil, err
	}
	d := Data(session)
	if d.AccessToken == "" {
		return "", nil, ErrUnauthenticated
	}
	return d.AccessToken, d, nil
}

func (p *Preview) Save(w http.ResponseWriter, r *http.Request, d *SessionData) error {
	return saveData(p.Store, w, r, d)
}

func (p *Preview) Logout(w http.ResponseWriter, r *http.Request) error {
	return dropSession(p.Store, w, r)
}
