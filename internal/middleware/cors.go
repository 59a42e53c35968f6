package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS wraps every response, the diagnostic 404 included. Credentials are
// allowed because the session rides in a cookie, which also means the origin
// list must stay explicit: no wildcard.
func CORS(origins []string) func(http.Handler) http.Handler {
	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:               86400, // cache pre-flights for a day
		AllowCredentials:     true,
		OptionsSuccessStatus: http.StatusOK,
	})

	return handler.Handler
}
