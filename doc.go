// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the accent-vote API server.

accent-vote collects one vote per person per subject (for example, which
pitch-accent pattern a speaker uses for a word) and serves live statistics
broken down by option and by voter demographics.

# Starting the Server

	DATABASE_URL=accent.db COOKIE_SECRET=... IP_HASH_SALT=... go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." -cookie-secret ... -ip-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - COOKIE_SECRET (-cookie-secret): Key material for the session cookie
  - IP_HASH_SALT (-ip-salt): Salt for the stored IP hashes

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PREVIOUS_COOKIE_SECRETS: Comma-separated retired cookie secrets
  - COOKIE_MAX_AGE: Session lifetime (default: 8760h)
  - SETTINGS_FILE (-settings): YAML runtime settings, reloaded on change
  - SEED_FILE (-seed): YAML catalog loaded at startup
  - REBUILD_ON_START (-rebuild): Recompute tallies from the vote ledger

Values from a .env file fill in anything the environment leaves unset.

# Architecture

  - identity: Stable voter identity from fingerprints or user ids
  - auth: Sealed session cookies and IP hashing
  - catalog: Subjects and options, cached
  - resolver: Canonical vote targets from legacy option references
  - ledger: One vote per identity per subject
  - tally: Derived counters and statistics snapshots
  - settings: Versioned runtime settings
  - metrics: Prometheus counters
  - handlers, router, middleware: HTTP surface
  - db, cliparse: Storage setup and configuration

See package documentation for each component.
*/
package main
