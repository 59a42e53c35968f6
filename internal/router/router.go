package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"family-memories/internal/config"
	"family-memories/internal/handler"
	"family-memories/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	OAuth   *handler.OAuthHandler
	Article *handler.ArticleHandler
	Media   *handler.MediaHandler
	Profile *handler.ProfileHandler
	Search  *handler.SearchHandler
}

func New(cfg *config.Config, sessions *middleware.SessionMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimit.Handler)
	// "/api/articles/42/" and "/api/articles/42" resolve identically.
	r.Use(chimw.StripSlashes)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/auth", func(auth chi.Router) {
		auth.Get("/{provider}/start", h.OAuth.Start)
		auth.Get("/{provider}/callback", h.OAuth.Callback)
		auth.Post("/logout", h.Auth.Logout)
		auth.With(sessions.Require).Get("/me", h.Auth.Me)

		auth.Post("/email/signup", h.Auth.Signup)
		auth.Post("/email/login", h.Auth.Login)
		auth.Post("/email/reset-request", h.Auth.ResetRequest)
		auth.Post("/email/reset-confirm", h.Auth.ResetConfirm)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		// Reading memories is open to the whole family circle; writing
		// needs identity.
		api.Get("/articles", h.Article.List)
		api.Get("/articles/{id}", h.Article.Get)
		api.Get("/articles/{id}/image", h.Article.CoverImage)
		api.Get("/tags", h.Article.Tags)
		api.With(sessions.Require).Post("/articles", h.Article.Create)
		api.With(sessions.Require).Patch("/articles/{id}", h.Article.Update)
		api.With(sessions.Require).Delete("/articles/{id}", h.Article.Delete)

		api.Route("/media", func(media chi.Router) {
			media.Use(sessions.Require)

			media.Get("/", h.Media.List)
			media.Post("/", h.Media.UploadURL)

			// Reserved literals. chi's trie matches static segments
			// ahead of the catch-all, so these can never be swallowed
			// by a media lookup.
			media.Post("/upload-url", h.Media.UploadURL)
			media.Post("/upload-direct", h.Media.UploadDirect)
			media.Get("/video-sign", h.Media.VideoSign)

			media.Delete("/{id}", h.Media.Delete)
			// Both the simple-id fetch and the filename-path lookup;
			// the handler branches on the remainder's shape.
			media.Get("/*", h.Media.GetByPath)
		})

		api.With(sessions.Require).Get("/profile", h.Profile.Get)
		api.With(sessions.Require).Put("/profile", h.Profile.Update)
		api.With(sessions.Require).Get("/search", h.Search.Search)
	})

	registered := collectRoutes(r)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeRouteError(w, http.StatusNotFound, "NOT_FOUND",
			fmt.Sprintf("no route for %s %s", req.Method, req.URL.Path), registered)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeRouteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("%s is not allowed on %s", req.Method, req.URL.Path), registered)
	})

	return r
}

// collectRoutes walks the finished tree once so the diagnostic 404 can list
// every registered "METHOD /path" key. Debugging aid, not a stable contract.
func collectRoutes(r chi.Router) []string {
	routes := make([]string, 0)
	_ = chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimSuffix(route, "/")
		if route == "" {
			route = "/"
		}
		routes = append(routes, method+" "+route)
		return nil
	})
	sort.Strings(routes)
	return routes
}

func writeRouteError(w http.ResponseWriter, status int, code string, message string, routes []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":               code,
		"message":             message,
		"available_endpoints": routes,
	})
}
