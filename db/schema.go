// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is restricted to the subset PostgreSQL and SQLite share.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Subjects (catalog, read-only to the core)
CREATE TABLE IF NOT EXISTS subject (
    id BIGINT PRIMARY KEY,
    label TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    starts_at TIMESTAMP,
    ends_at TIMESTAMP
);

-- Options (catalog). Option ids are global across subjects.
CREATE TABLE IF NOT EXISTS subject_option (
    id BIGINT PRIMARY KEY,
    subject_id BIGINT NOT NULL REFERENCES subject(id) ON DELETE CASCADE,
    semantic_key TEXT NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL DEFAULT 0,
    UNIQUE (subject_id, semantic_key)
);

CREATE INDEX IF NOT EXISTS idx_subject_option_subject_id ON subject_option(subject_id);

-- Votes (ledger). One vote per identity per subject.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    identity TEXT NOT NULL,
    subject_id BIGINT NOT NULL REFERENCES subject(id) ON DELETE CASCADE,
    option_id BIGINT NOT NULL REFERENCES subject_option(id) ON DELETE CASCADE,
    semantic_key TEXT NOT NULL,
    region TEXT,
    age_band TEXT,
    gender TEXT,
    ip_hash TEXT,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (identity, subject_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_subject_id ON vote(subject_id);

-- Tallies (derived, rebuildable from vote)
CREATE TABLE IF NOT EXISTS tally (
    subject_id BIGINT NOT NULL,
    dimension TEXT NOT NULL,
    dimension_value TEXT NOT NULL,
    vote_count BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (subject_id, dimension, dimension_value)
);

-- Votes already folded into tally
CREATE TABLE IF NOT EXISTS applied_vote (
    vote_id TEXT PRIMARY KEY,
    subject_id BIGINT NOT NULL,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applied_vote_subject_id ON applied_vote(subject_id);
`
