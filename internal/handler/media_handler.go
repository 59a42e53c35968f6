package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"family-memories/internal/middleware"
	"family-memories/internal/model"
	"family-memories/internal/service"
	"family-memories/pkg/apierror"
)

// mediaIDShape matches the simple-id form (a ULID). Anything else hitting
// the catch-all is treated as a filename-path lookup.
var mediaIDShape = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

type MediaHandler struct {
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	items, err := h.media.List(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// UploadURL registers the media record and returns a presigned PUT ticket.
func (h *MediaHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var payload model.CreateMediaRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	ticket, err := h.media.CreateUploadTicket(r.Context(), claims.Subject, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

// UploadDirect streams the raw request body into the bucket. Metadata rides
// in the query string because the body is the file itself.
func (h *MediaHandler) UploadDirect(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	defer r.Body.Close()

	req := model.CreateMediaRequest{
		Filename:    r.URL.Query().Get("filename"),
		ContentType: r.Header.Get("Content-Type"),
		Kind:        r.URL.Query().Get("kind"),
		Tags:        splitTags(r.URL.Query().Get("tags")),
	}

	m, err := h.media.UploadDirect(r.Context(), claims.Subject, req, r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// VideoSign returns a playback URL for one of the caller's videos.
func (h *MediaHandler) VideoSign(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, apierror.New("BAD_REQUEST", "an id query parameter is required", "", http.StatusBadRequest))
		return
	}

	signed, err := h.media.SignVideo(r.Context(), claims.Subject, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signed)
}

// GetByPath is the catch-all fetch. An id-shaped remainder without a slash
// returns the signed URL as JSON; anything else resolves by filename and
// redirects, so /api/media/2024/beach.jpg works straight from an <img> tag.
func (h *MediaHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	remainder := chi.URLParam(r, "*")
	if !strings.Contains(remainder, "/") && mediaIDShape.MatchString(remainder) {
		signed, err := h.media.SignedGet(r.Context(), claims.Subject, remainder)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, signed)
		return
	}

	signed, err := h.media.SignedGetByPath(r.Context(), claims.Subject, remainder)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, signed.URL, http.StatusFound)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	if err := h.media.Delete(r.Context(), claims.Subject, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
