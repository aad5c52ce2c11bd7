// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the accent-vote API.

NewRouter builds an http.ServeMux from the shared services:

	mux := router.NewRouter(router.Deps{DB: db, Ledger: l, ...})

# Endpoints

	GET  /health                    - Database ping
	GET  /                          - Version banner
	GET  /metrics                   - Prometheus metrics
	POST /identity                  - Set the session cookie from a fingerprint
	POST /subjects/{id}/votes       - Cast a vote
	GET  /subjects/{id}/my-vote     - The caller's vote on a subject
	GET  /subjects/{id}/statistics  - Tallies for a subject
*/
package router
