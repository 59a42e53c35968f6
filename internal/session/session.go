// Package session turns signed tokens into browser cookies and back.
// Sessions are fully stateless: nothing is persisted server-side, so
// rotating the secret logs everybody out.
package session

import (
	"net/http"
	"time"

	"family-memories/internal/model"
	"family-memories/internal/token"
)

const (
	// CookieName carries the session token.
	CookieName = "fm_session"
	// StateCookieName carries the OAuth CSRF state for one round-trip.
	StateCookieName = "fm_oauth_state"
)

type Store struct {
	secret   []byte
	ttl      time.Duration
	stateTTL time.Duration
	domain   string
}

// New builds a Store. domain may be empty; in that case the Domain attribute
// is omitted so local development works without a fixed host.
func New(secret string, ttl time.Duration, stateTTL time.Duration, domain string) *Store {
	return &Store{
		secret:   []byte(secret),
		ttl:      ttl,
		stateTTL: stateTTL,
		domain:   domain,
	}
}

// Issue signs a fresh token for the user and sets the session cookie.
func (s *Store) Issue(w http.ResponseWriter, u model.User) error {
	claims := token.New(u.ID, s.ttl)
	claims.Provider = u.Provider
	claims.ProviderUserID = u.ProviderUserID
	claims.Email = u.Email
	claims.Name = u.Name
	claims.PictureURL = u.PictureURL

	signed, err := token.Sign(claims, s.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, s.cookie(CookieName, signed, int(s.ttl.Seconds())))
	return nil
}

// Read resolves the session from the request's cookie header. Any failure
// (missing cookie, bad signature, expired token) reads as "no session".
func (s *Store) Read(r *http.Request) (token.Claims, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return token.Claims{}, false
	}

	return token.Verify(c.Value, s.secret)
}

// Clear instructs the browser to drop the session cookie.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(CookieName, "", -1))
}

// SetState stores the OAuth CSRF state for the authorization round-trip.
func (s *Store) SetState(w http.ResponseWriter, state string) {
	http.SetCookie(w, s.cookie(StateCookieName, state, int(s.stateTTL.Seconds())))
}

// ReadState returns the stored state, if any.
func (s *Store) ReadState(r *http.Request) (string, bool) {
	c, err := r.Cookie(StateCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	return c.Value, true
}

// ClearState consumes the state cookie after one callback.
func (s *Store) ClearState(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(StateCookieName, "", -1))
}

func (s *Store) cookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
