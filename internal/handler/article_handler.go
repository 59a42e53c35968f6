package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"family-memories/internal/middleware"
	"family-memories/internal/model"
	"family-memories/internal/service"
)

type ArticleHandler struct {
	articles *service.ArticleService
	media    *service.MediaService
}

func NewArticleHandler(articles *service.ArticleService, media *service.MediaService) *ArticleHandler {
	return &ArticleHandler{articles: articles, media: media}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.articles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var payload model.CreateArticleRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.articles.Create(r.Context(), claims.Subject, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var payload model.UpdateArticleRequest
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.articles.Update(r.Context(), claims.Subject, chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	if err := h.articles.Delete(r.Context(), claims.Subject, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CoverImage redirects to a signed URL for the article's cover media.
// Articles are readable by the whole family, so no ownership check here.
func (h *ArticleHandler) CoverImage(w http.ResponseWriter, r *http.Request) {
	a, err := h.articles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if a.CoverMediaID == "" {
		writeError(w, model.ErrMediaNotFound)
		return
	}

	signed, err := h.media.SignedGetShared(r.Context(), a.CoverMediaID)
	if err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, signed.URL, http.StatusFound)
}

func (h *ArticleHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.articles.Tags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}
