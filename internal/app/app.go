package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-memories/internal/blobstore"
	"family-memories/internal/config"
	"family-memories/internal/database"
	"family-memories/internal/handler"
	"family-memories/internal/mail"
	"family-memories/internal/middleware"
	"family-memories/internal/oauth"
	"family-memories/internal/repository"
	"family-memories/internal/router"
	"family-memories/internal/service"
	"family-memories/internal/session"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewResetTokenRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	mediaRepo := repository.NewMediaRepository(pool)
	slog.Info("database ready")

	objects, err := blobstore.New(context.Background(), blobstore.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.EmailAPIKey != "" {
		mailer = mail.NewHTTPMailer(cfg.EmailBaseURL, cfg.EmailAPIKey, cfg.EmailFrom)
	} else {
		slog.Warn("EMAIL_API_KEY not set, password reset links will only be logged")
	}

	sessions := session.New(cfg.SessionSecret, cfg.SessionTTL, cfg.StateTTL, cfg.CookieDomain)
	sessionMiddleware := middleware.NewSessionMiddleware(sessions)

	var providers []oauth.Provider
	if cfg.Google.ClientID != "" {
		providers = append(providers, oauth.NewGoogle(oauth.Credentials{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURI:  cfg.Google.RedirectURI,
		}))
	}
	if cfg.GitHub.ClientID != "" {
		providers = append(providers, oauth.NewGitHub(oauth.Credentials{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURI:  cfg.GitHub.RedirectURI,
		}))
	}
	if len(providers) == 0 {
		slog.Warn("no OAuth providers configured, only email login is available")
	}

	authService := service.NewAuthService(userRepo, resetRepo, mailer, cfg.FrontendURL, cfg.ResetTokenTTL)
	oauthService := service.NewOAuthService(userRepo, providers...)
	articleService := service.NewArticleService(articleRepo)
	mediaService := service.NewMediaService(mediaRepo, objects, cfg.MediaURLTTL)
	searchService := service.NewSearchService(articleRepo, mediaRepo)

	appRouter := router.New(cfg, sessionMiddleware, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, sessions),
		OAuth:   handler.NewOAuthHandler(oauthService, sessions, cfg.FrontendURL),
		Article: handler.NewArticleHandler(articleService, mediaService),
		Media:   handler.NewMediaHandler(mediaService),
		Profile: handler.NewProfileHandler(authService),
		Search:  handler.NewSearchHandler(searchService),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
