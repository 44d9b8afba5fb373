package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/khabaroff/staff-accounts/src/auth"
	"github.com/khabaroff/staff-accounts/src/config"
	"github.com/khabaroff/staff-accounts/src/database"
	"github.com/khabaroff/staff-accounts/src/handlers"
	"github.com/khabaroff/staff-accounts/src/logging"
	"github.com/khabaroff/staff-accounts/src/middleware"
	"github.com/khabaroff/staff-accounts/src/repositories/postgres"
	"github.com/khabaroff/staff-accounts/src/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// logging is not configured yet; the default logger writes JSON to stderr
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize structured logging
	logging.Setup(cfg.Logging())

	log.Info().
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Str("version", handlers.Version).
		Msg("starting server")

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.Database.URL, cfg.Pool())
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Msg("database connected")

	// Initialize token handling
	validator, err := auth.NewTokenValidator(cfg.Token())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token validator")
	}
	issuer, err := auth.NewTokenIssuer(cfg.Token())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token issuer")
	}

	// Initialize services
	hasher, err := services.NewBcryptHasher(cfg.Passwords.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize password hasher")
	}
	repo := postgres.NewAccountRepository(db.GetPool())
	accountService := services.NewAccountService(repo, hasher)
	loginService := services.NewLoginService(repo, hasher, issuer)

	// Ensure an administrator exists before accepting requests
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	created, err := services.NewBootstrapper(repo, accountService).EnsureAdmin(ctx, cfg.Bootstrap())
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap administrator")
	}
	if created {
		log.Info().Str("initials", cfg.Admin.Initials).Msg("initial administrator created")
	}

	loginLimiter := middleware.NewIPRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.Login.RequestsPerMinute,
		Burst:             cfg.Login.Burst,
	})
	defer loginLimiter.Stop()

	// Create Gin router
	router, err := newRouter(cfg.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure router")
	}

	// Add middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Location", middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(middleware.Authenticate(validator))

	// Setup routes
	handlers.RegisterRoutes(router, handlers.Routes{
		Health:       handlers.NewHealthHandler(db),
		Accounts:     handlers.NewAccountHandler(accountService),
		Auth:         handlers.NewAuthHandler(loginService),
		LoginLimiter: loginLimiter.Middleware(),
	})

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server shut down successfully")
}

// newRouter creates the engine. With no trusted proxies, ClientIP is the
// socket peer and X-Forwarded-For is ignored.
func newRouter(trustedProxies []string) (*gin.Engine, error) {
	router := gin.New()
	if len(trustedProxies) == 0 {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	return router, nil
}
