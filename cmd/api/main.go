package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gcmn-library/backend/api/handlers"
	"github.com/gcmn-library/backend/api/routes"
	"github.com/gcmn-library/backend/internal/borrows"
	"github.com/gcmn-library/backend/internal/cards"
	"github.com/gcmn-library/backend/internal/catalog"
	"github.com/gcmn-library/backend/internal/content"
	"github.com/gcmn-library/backend/internal/donations"
	"github.com/gcmn-library/backend/internal/messages"
	"github.com/gcmn-library/backend/internal/store"
	"github.com/gcmn-library/backend/internal/students"
	"github.com/gcmn-library/backend/internal/users"
	"github.com/gcmn-library/backend/pkg/config"
	"github.com/gcmn-library/backend/pkg/db"
	"github.com/gcmn-library/backend/pkg/logger"
	"github.com/gcmn-library/backend/pkg/metrics"
	"github.com/gcmn-library/backend/pkg/migrate"
	"github.com/gcmn-library/backend/pkg/storage/supabase"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	st := store.New(dbClient.DB())
	if err := st.Init(context.Background()); err != nil {
		logg.Error(context.Background(), "store connection check failed", err)
		os.Exit(1)
	}

	storageClient, err := supabase.NewClient(cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create storage client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	cardMetrics := metrics.NewCardMetrics(registry)

	svcs := routes.Services{
		Users:     users.NewService(st, logg),
		Cards:     cards.NewService(st, cfg.Password, cardMetrics, logg),
		Students:  students.NewService(st),
		Catalog:   catalog.NewService(st),
		Content:   content.NewService(st),
		Messages:  messages.NewService(st),
		Borrows:   borrows.NewService(st),
		Donations: donations.NewService(st),
	}

	readiness := map[string]handlers.Pinger{
		"database": dbClient,
		"storage":  storageClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, svcs, storageClient, readiness, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
