// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open selects the driver from the configured database type:

	conn, err := db.Open(db.TypePostgres, "postgres://...")  // lib/pq
	conn, err := db.Open(db.TypeSQLite, "file:votes.db")      // modernc.org/sqlite

SQLite connections are limited to one pooled connection so concurrent
transactions queue instead of failing.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - subject: things being voted on, with an optional validity window
  - subject_option: options, globally unique id, UNIQUE (subject_id, semantic_key)
  - vote: the ledger, UNIQUE (identity, subject_id)
  - tally: counters keyed by (subject_id, dimension, dimension_value)
  - applied_vote: vote ids already folded into tally

# Relationships

	subject 1──* subject_option
	subject 1──* vote
	subject_option 1──* vote

# Errors

IsUniqueViolation recognizes unique constraint failures from both drivers,
and IsTransient recognizes faults worth a single retry.
*/
package db
