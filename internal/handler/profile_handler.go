package handler

import (
	"net/http"

	"family-memories/internal/middleware"
	"family-memories/internal/model"
	"family-memories/internal/service"
)

type ProfileHandler struct {
	auth *service.AuthService
}

func NewProfileHandler(auth *service.AuthService) *ProfileHandler {
	return &ProfileHandler{auth: auth}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	u, err := h.auth.GetUser(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var payload model.UpdateProfileRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.auth.UpdateProfile(r.Context(), claims.Subject, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}
