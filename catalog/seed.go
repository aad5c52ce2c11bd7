// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/accent-vote/models"
)

// SeedFile is the YAML layout of a catalog seed:
//
//	subjects:
//	  - id: 1
//	    label: hashi
//	    options:
//	      - {id: 101, semantic_key: "1", label: atamadaka}
type SeedFile struct {
	Subjects []SeedSubject `yaml:"subjects"`
}

type SeedSubject struct {
	ID       int64        `yaml:"id"`
	Label    string       `yaml:"label"`
	StartsAt *time.Time   `yaml:"starts_at,omitempty"`
	EndsAt   *time.Time   `yaml:"ends_at,omitempty"`
	Options  []SeedOption `yaml:"options"`
}

type SeedOption struct {
	ID           int64  `yaml:"id"`
	SemanticKey  string `yaml:"semantic_key"`
	Label        string `yaml:"label"`
	DisplayOrder int    `yaml:"display_order"`
}

// SeedResult counts rows inserted by Seed. Rows that already existed are
// not counted.
type SeedResult struct {
	Subjects int64
	Options  int64
}

// ParseSeed decodes and validates a seed document
func ParseSeed(r io.Reader) (SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return SeedFile{}, fmt.Errorf("failed to parse seed: %w", err)
	}

	subjects := make(map[int64]bool)
	options := make(map[int64]bool)
	for _, s := range f.Subjects {
		if s.ID <= 0 {
			return SeedFile{}, fmt.Errorf("subject %q: id must be positive", s.Label)
		}
		if subjects[s.ID] {
			return SeedFile{}, fmt.Errorf("subject %d: duplicate id", s.ID)
		}
		subjects[s.ID] = true

		keys := make(map[string]bool)
		for _, o := range s.Options {
			if o.ID <= 0 {
				return SeedFile{}, fmt.Errorf("subject %d option %q: id must be positive", s.ID, o.Label)
			}
			if o.ID <= models.ReservedKeyMax {
				return SeedFile{}, fmt.Errorf("option %d: ids up to %d are reserved for semantic key codes", o.ID, models.ReservedKeyMax)
			}
			if options[o.ID] {
				return SeedFile{}, fmt.Errorf("option %d: duplicate id", o.ID)
			}
			if o.SemanticKey == "" {
				return SeedFile{}, fmt.Errorf("option %d: semantic_key is required", o.ID)
			}
			if keys[o.SemanticKey] {
				return SeedFile{}, fmt.Errorf("subject %d: duplicate semantic_key %q", s.ID, o.SemanticKey)
			}
			options[o.ID] = true
			keys[o.SemanticKey] = true
		}
	}
	return f, nil
}

// LoadSeedFile reads a seed document from disk
func LoadSeedFile(path string) (SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedFile{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

// Seed inserts missing subjects and options in one transaction. Existing
// rows are left untouched.
func Seed(ctx context.Context, db *sql.DB, f SeedFile) (SeedResult, error) {
	var res SeedResult

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, s := range f.Subjects {
		r, err := tx.ExecContext(ctx, `
			INSERT INTO subject (id, label, created_at, starts_at, ends_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, s.ID, s.Label, now, nullTime(s.StartsAt), nullTime(s.EndsAt))
		if err != nil {
			return res, fmt.Errorf("failed to insert subject %d: %w", s.ID, err)
		}
		n, _ := r.RowsAffected()
		res.Subjects += n

		for _, o := range s.Options {
			r, err := tx.ExecContext(ctx, `
				INSERT INTO subject_option (id, subject_id, semantic_key, label, display_order)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO NOTHING
			`, o.ID, s.ID, o.SemanticKey, o.Label, o.DisplayOrder)
			if err != nil {
				return res, fmt.Errorf("failed to insert option %d: %w", o.ID, err)
			}
			n, _ := r.RowsAffected()
			res.Options += n
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit seed: %w", err)
	}
	return res, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
