// Command server runs the study backend HTTP API.
//
// Startup order:
//  1. Load .env (optional) and environment configuration
//  2. Configure global logging
//  3. Initialize OpenTelemetry tracing (when enabled)
//  4. Open SQLite, run migrations, open the image store
//  5. Build the AI assistant, billing provider, and application services
//  6. Mount the Gin router and serve until SIGINT/SIGTERM
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	_ "github.com/nkoutras/go-study-backend/docs"
	"github.com/nkoutras/go-study-backend/internal/assistant"
	"github.com/nkoutras/go-study-backend/internal/billing"
	"github.com/nkoutras/go-study-backend/internal/config"
	httpapi "github.com/nkoutras/go-study-backend/internal/http"
	"github.com/nkoutras/go-study-backend/internal/imagestore"
	"github.com/nkoutras/go-study-backend/internal/observability"
	"github.com/nkoutras/go-study-backend/internal/repo"
	"github.com/nkoutras/go-study-backend/internal/services"
	"github.com/nkoutras/go-study-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// @title           Study Backend API
// @version         1.0
// @description     Credit-metered AI study features: scan solving, notes, quizzes, flashcards, and mind maps, with history, credits, and subscriptions.
// @BasePath        /api/v1
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetupLogger(cfg.OTEL.ServiceName, cfg.LogPretty)
	sysutil.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	images, err := imagestore.New(cfg.ImageDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ImageDir).Msg("open image store")
	}

	if cfg.Anthropic.APIKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY unset; AI answers will fail until configured")
	}
	ai := assistant.NewAnthropic(assistant.Config{
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		MaxTokens: int64(cfg.Anthropic.MaxTokens),
	}, images)

	var provider billing.Provider
	if cfg.Billing.BaseURL != "" {
		provider = billing.NewClient(cfg.Billing.BaseURL, cfg.Billing.APIKey,
			billing.WithTimeout(cfg.Billing.Timeout))
		log.Info().Str("base_url", cfg.Billing.BaseURL).Msg("billing provider enabled")
	} else {
		log.Info().Msg("billing provider disabled; credit ledger runs local-only")
	}

	ledger := services.NewLedgerService(db, provider, cfg.Credits.DefaultGrant)
	ledger.FetchTimeout = cfg.Credits.FetchTimeout
	history := services.NewHistoryService(db, cfg.Location())
	ent := services.NewEntitlementService(db, provider, ledger)
	ent.FetchTimeout = cfg.Credits.FetchTimeout
	study := services.NewStudyService(db, ledger, history, ai, images)
	study.SpendPerCall = cfg.Credits.SpendPerCall
	study.MaxContentLen = cfg.MaxContentLen

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Study:   study,
		History: history,
		Ledger:  ledger,
		Ent:     ent,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("version", version).
		Str("base_path", cfg.APIBasePath).
		Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}
