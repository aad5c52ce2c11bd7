// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/accent-vote/auth"
	"github.com/danielhkuo/accent-vote/catalog"
	"github.com/danielhkuo/accent-vote/cliparse"
	"github.com/danielhkuo/accent-vote/handlers"
	"github.com/danielhkuo/accent-vote/ledger"
	"github.com/danielhkuo/accent-vote/metrics"
	"github.com/danielhkuo/accent-vote/middleware"
	"github.com/danielhkuo/accent-vote/settings"
	"github.com/danielhkuo/accent-vote/tally"
)

// Deps are the shared services the handlers are built from
type Deps struct {
	DB       *sql.DB
	Config   cliparse.Config
	Catalog  catalog.Store
	Ledger   *ledger.Ledger
	Tally    *tally.Maintainer
	Guard    *auth.Guard
	Settings *settings.Store
	Metrics  *metrics.Metrics
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	identityHandler := handlers.NewIdentityHandler(d.Guard, d.Config)
	votingHandler := handlers.NewVotingHandler(d.Ledger, d.Guard, d.Settings, d.Metrics, d.Config)
	statisticsHandler := handlers.NewStatisticsHandler(d.Tally, d.Catalog)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.PingContext(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /identity", middleware.WithLogging(identityHandler.Establish))

	// Voting
	mux.HandleFunc("POST /subjects/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /subjects/{id}/my-vote", middleware.WithLogging(votingHandler.GetMyVote))

	// Statistics (public)
	mux.HandleFunc("GET /subjects/{id}/statistics", middleware.WithLogging(statisticsHandler.GetStatistics))

	mux.Handle("GET /metrics", d.Metrics.Handler())

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("accent-vote API v1"))
	})

	return mux
}
