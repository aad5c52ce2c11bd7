// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/accent-vote/models"
)

// ErrNotFound is returned when a subject or option row does not exist
var ErrNotFound = errors.New("catalog: not found")

// Store is the read-only view of subjects and options the core depends on.
// Lookup misses return ErrNotFound; storage faults wrap
// models.ErrStorageUnavailable.
type Store interface {
	GetSubject(ctx context.Context, id int64) (models.Subject, error)
	GetOption(ctx context.Context, id int64) (models.Option, error)
	GetOptionBySubjectAndKey(ctx context.Context, subjectID int64, key string) (models.Option, error)
}

// SQLStore reads the catalog tables
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) GetSubject(ctx context.Context, id int64) (models.Subject, error) {
	var subj models.Subject
	var startsAt, endsAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, created_at, starts_at, ends_at
		FROM subject
		WHERE id = $1
	`, id).Scan(&subj.ID, &subj.Label, &subj.CreatedAt, &startsAt, &endsAt)

	if err == sql.ErrNoRows {
		return models.Subject{}, fmt.Errorf("subject %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Subject{}, fmt.Errorf("query subject %d: %w: %w", id, models.ErrStorageUnavailable, err)
	}

	if startsAt.Valid {
		subj.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		subj.EndsAt = &endsAt.Time
	}
	return subj, nil
}

func (s *SQLStore) GetOption(ctx context.Context, id int64) (models.Option, error) {
	var opt models.Option
	err := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, semantic_key, label, display_order
		FROM subject_option
		WHERE id = $1
	`, id).Scan(&opt.ID, &opt.SubjectID, &opt.SemanticKey, &opt.Label, &opt.DisplayOrder)

	if err == sql.ErrNoRows {
		return models.Option{}, fmt.Errorf("option %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Option{}, fmt.Errorf("query option %d: %w: %w", id, models.ErrStorageUnavailable, err)
	}
	return opt, nil
}

func (s *SQLStore) GetOptionBySubjectAndKey(ctx context.Context, subjectID int64, key string) (models.Option, error) {
	var opt models.Option
	err := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, semantic_key, label, display_order
		FROM subject_option
		WHERE subject_id = $1 AND semantic_key = $2
	`, subjectID, key).Scan(&opt.ID, &opt.SubjectID, &opt.SemanticKey, &opt.Label, &opt.DisplayOrder)

	if err == sql.ErrNoRows {
		return models.Option{}, fmt.Errorf("option %d/%s: %w", subjectID, key, ErrNotFound)
	}
	if err != nil {
		return models.Option{}, fmt.Errorf("query option %d/%s: %w: %w", subjectID, key, models.ErrStorageUnavailable, err)
	}
	return opt, nil
}
