package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"family-memories/internal/service"
	"family-memories/internal/session"
	"family-memories/pkg/apierror"
)

// OAuthHandler owns the HTTP half of the federated flows: the state cookie
// and the redirects. The provider round-trips live in the service.
type OAuthHandler struct {
	oauth    *service.OAuthService
	sessions *session.Store
	frontend string
}

func NewOAuthHandler(oauth *service.OAuthService, sessions *session.Store, frontendURL string) *OAuthHandler {
	return &OAuthHandler{
		oauth:    oauth,
		sessions: sessions,
		frontend: strings.TrimRight(frontendURL, "/"),
	}
}

func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state := uuid.NewString()
	authURL, err := h.oauth.AuthURL(provider, state)
	if err != nil {
		writeError(w, err)
		return
	}

	h.sessions.SetState(w, state)
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		writeError(w, apierror.New("BAD_REQUEST", "the identity provider reported an error",
			providerErr, http.StatusBadRequest))
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		writeError(w, apierror.New("BAD_REQUEST", "missing code or state in the callback",
			"", http.StatusBadRequest))
		return
	}

	// CSRF defense: the state must byte-equal the value we set before the
	// redirect. Fails closed on a missing cookie.
	stored, ok := h.sessions.ReadState(r)
	if !ok || stored != state {
		writeError(w, apierror.New("CSRF_MISMATCH", "the login flow looks stale, please start again",
			"", http.StatusBadRequest))
		return
	}

	// Consume the state so the same callback can't be replayed within
	// the cookie's lifetime.
	h.sessions.ClearState(w)

	u, err := h.oauth.Complete(r.Context(), provider, code)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessions.Issue(w, u); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, h.frontend+"/?auth=success", http.StatusFound)
}
