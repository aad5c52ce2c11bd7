package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/accent-vote/auth"
	"github.com/danielhkuo/accent-vote/catalog"
	"github.com/danielhkuo/accent-vote/cliparse"
	"github.com/danielhkuo/accent-vote/db"
	"github.com/danielhkuo/accent-vote/ledger"
	"github.com/danielhkuo/accent-vote/metrics"
	"github.com/danielhkuo/accent-vote/middleware"
	"github.com/danielhkuo/accent-vote/router"
	"github.com/danielhkuo/accent-vote/settings"
	"github.com/danielhkuo/accent-vote/tally"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if cfg.SeedFile != "" {
		seed, err := catalog.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			slog.Error("failed to load catalog seed", "error", err)
			os.Exit(1)
		}
		res, err := catalog.Seed(ctx, dbConn, seed)
		if err != nil {
			slog.Error("catalog seeding failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Catalog seeded",
			"subjects", humanize.Comma(res.Subjects),
			"options", humanize.Comma(res.Options))
	}

	st, err := settings.NewStore(cfg.SettingsFile)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		os.Exit(1)
	}
	if err := st.Watch(ctx); err != nil {
		slog.Warn("settings hot reload disabled", "error", err)
	}

	guard, err := auth.NewGuard(cfg.CookieSecret,
		auth.WithPreviousSecrets(cfg.PreviousCookieSecrets...),
		auth.WithMaxAge(cfg.CookieMaxAge))
	if err != nil {
		slog.Error("failed to initialize cookie guard", "error", err)
		os.Exit(1)
	}

	store := catalog.NewCachedStore(catalog.NewSQLStore(dbConn), cfg.CatalogCacheTTL)
	tm := tally.New(dbConn, tally.WithGranularity(st.TimeBucket))
	l := ledger.New(dbConn, store, tm)

	if cfg.RebuildOnStart {
		start := time.Now()
		n, err := tm.RebuildAll(ctx)
		if err != nil {
			slog.Error("tally rebuild failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Tallies rebuilt", "votes", humanize.Comma(n), "took", time.Since(start).Round(time.Millisecond))
	}

	mux := router.NewRouter(router.Deps{
		DB:       dbConn,
		Config:   cfg,
		Catalog:  store,
		Ledger:   l,
		Tally:    tm,
		Guard:    guard,
		Settings: st,
		Metrics:  metrics.New(),
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
