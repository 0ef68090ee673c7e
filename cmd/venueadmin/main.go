package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vbonduro/venueadmin/internal/adminapi"
	"github.com/vbonduro/venueadmin/internal/chart"
	"github.com/vbonduro/venueadmin/internal/config"
	"github.com/vbonduro/venueadmin/internal/db"
	"github.com/vbonduro/venueadmin/internal/logging"
	"github.com/vbonduro/venueadmin/internal/service"
	"github.com/vbonduro/venueadmin/internal/store"
	"github.com/vbonduro/venueadmin/internal/web"
	"github.com/vbonduro/venueadmin/internal/web/templates"
)

func main() {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	var (
		journal service.SaveJournal
		history web.JournalReader
	)
	if cfg.JournalDBPath != "" {
		database, err := db.Open(cfg.JournalDBPath)
		if err != nil {
			logger.Error("failed to open journal database", "error", err)
			return
		}
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close journal database", "error", err)
			}
		}()
		js := store.NewJournalStore(database)
		journal, history = js, js
		logger.Info("save journal enabled", "path", cfg.JournalDBPath)
	}

	httpClient := adminapi.NewBreakerClient(&http.Client{Timeout: 15 * time.Second}, cfg.BreakerFailures, logger)
	api := adminapi.NewClient(cfg.APIBaseURL, httpClient, logger)

	server := web.NewServer(
		service.NewSessionService(api, logger),
		service.NewEditors(api, journal, logger),
		history,
		chart.New(chart.DefaultConfig()),
		web.NewLoginLimiter(cfg.LoginRatePerMin, cfg.LoginBurst),
		templates.FS,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
	logger.Info("server stopped")
}
