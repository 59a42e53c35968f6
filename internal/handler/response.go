package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"family-memories/internal/model"
	"family-memories/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError is the single funnel from Go errors to the wire shape
// {error, message, details?}. Handlers never build error JSON by hand.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := apierror.New("INTERNAL_ERROR", "unexpected server error", "", status)

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body = apiErr
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body = apierror.New("NOT_FOUND", "user not found", "", status)
	case errors.Is(err, model.ErrArticleNotFound):
		status = http.StatusNotFound
		body = apierror.New("NOT_FOUND", "memory not found", "", status)
	case errors.Is(err, model.ErrMediaNotFound):
		status = http.StatusNotFound
		body = apierror.New("NOT_FOUND", "media not found", "", status)
	case errors.Is(err, model.ErrResetTokenNotFound),
		errors.Is(err, model.ErrResetTokenUsed),
		errors.Is(err, model.ErrResetTokenExpired):
		status = http.StatusBadRequest
		body = apierror.New("BAD_REQUEST", "this reset link is invalid or has expired", "", status)
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		body = apierror.New("ALREADY_EXISTS", "an account with this email already exists", "", status)
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		body = apierror.New("UNAUTHORIZED", "invalid credentials", "", status)
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body = apierror.New("BAD_REQUEST", "invalid input", "", status)
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, body)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest)
	}
	return nil
}
