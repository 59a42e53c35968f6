package handler

import (
	"net/http"

	"family-memories/internal/middleware"
	"family-memories/internal/model"
	"family-memories/internal/service"
	"family-memories/internal/session"
	"family-memories/pkg/apierror"
)

// AuthHandler covers the local email+password flows plus logout and /auth/me.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Store
}

func NewAuthHandler(auth *service.AuthService, sessions *session.Store) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload model.SignupRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.auth.Signup(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessions.Issue(w, u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u.Public())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessions.Issue(w, u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	var payload model.ResetRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.RequestReset(r.Context(), payload.Email); err != nil {
		writeError(w, err)
		return
	}

	// Success-shaped whether or not the address exists.
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *AuthHandler) ResetConfirm(w http.ResponseWriter, r *http.Request) {
	var payload model.ResetConfirmRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.auth.ConfirmReset(r.Context(), payload.Token, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessions.Issue(w, u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "you need to be signed in", "", http.StatusUnauthorized))
		return
	}

	u, err := h.auth.GetUser(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": u.Public()})
}
