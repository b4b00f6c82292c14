// Command server runs the quote request HTTP API.
//
// @title                       Quote Request API
// @version                     1.0
// @description                 Quote request lifecycle, supplier invitations, response reconciliation and reports.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  CallerID
// @in                          header
// @name                        X-User-ID
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/go-quote-backend/docs"
	"github.com/tbourn/go-quote-backend/internal/config"
	httpapi "github.com/tbourn/go-quote-backend/internal/http"
	"github.com/tbourn/go-quote-backend/internal/jobs"
	"github.com/tbourn/go-quote-backend/internal/observability"
	"github.com/tbourn/go-quote-backend/internal/repo"
	"github.com/tbourn/go-quote-backend/internal/services"
	"github.com/tbourn/go-quote-backend/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var migrateOnly = flag.Bool("migrate-only", false, "Run database migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = sysutil.NewLogger(os.Stderr, cfg.LogPretty, cfg.OTEL.ServiceName, version)
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.Open(repo.Options{
		Driver:  cfg.DBDriver,
		Path:    cfg.DBPath,
		DSN:     cfg.DBDSN,
		Tracing: cfg.OTEL.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if *migrateOnly {
		log.Info().Msg("migrations completed")
		return
	}

	svc := services.New(db, services.Options{
		Notifier: services.LogNotifier{Via: cfg.NotificationChannel},
		Location: cfg.ReportLocation,
	})

	var sweeper *jobs.ExpirySweeper
	if cfg.Expiry.Enabled {
		sweeper = &jobs.ExpirySweeper{
			Expirer:  svc.QuoteRequests,
			Purger:   svc.QuoteRequests,
			Schedule: cfg.Expiry.Schedule,
			Timeout:  cfg.Expiry.Timeout,
		}
		if err := sweeper.Start(); err != nil {
			log.Fatal().Err(err).Msg("expiry sweeper failed to start")
		}
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)

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
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("expiry sweeper stop")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("server stopped")
}
