// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/accent-vote/models"
)

// overallValue is the dimension_value of the single overall counter row
const overallValue = "*"

// Execer is satisfied by *sql.DB and *sql.Tx
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Maintainer owns the tally and applied_vote tables. It is the only writer
// of either.
type Maintainer struct {
	db          *sql.DB
	granularity func() string
}

type Option func(*Maintainer)

// WithGranularity sets the source of the time bucket size, models.BucketHour
// or models.BucketDay. It is consulted on every apply, so counters written
// before a change keep their old labels until the subject is rebuilt.
func WithGranularity(f func() string) Option {
	return func(m *Maintainer) {
		m.granularity = f
	}
}

func New(db *sql.DB, opts ...Option) *Maintainer {
	m := &Maintainer{
		db:          db,
		granularity: func() string { return models.BucketHour },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply folds one vote into the tallies in its own transaction.
// It reports false when the vote was already applied.
func (m *Maintainer) Apply(ctx context.Context, v models.Vote) (bool, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	applied, err := m.ApplyTx(ctx, tx, v)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit tally: %w", err)
	}
	return applied, nil
}

// ApplyTx folds one vote into the tallies using the caller's transaction, so
// the increments commit or roll back together with it. A vote id is counted
// at most once; repeated calls report false and change nothing.
func (m *Maintainer) ApplyTx(ctx context.Context, tx Execer, v models.Vote) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO applied_vote (vote_id, subject_id, applied_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (vote_id) DO NOTHING
	`, v.ID, v.SubjectID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to mark vote applied: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark vote applied: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	for _, c := range m.counters(v) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tally (subject_id, dimension, dimension_value, vote_count)
			VALUES ($1, $2, $3, 1)
			ON CONFLICT (subject_id, dimension, dimension_value)
			DO UPDATE SET vote_count = tally.vote_count + 1
		`, v.SubjectID, c.dimension, c.value)
		if err != nil {
			return false, fmt.Errorf("failed to increment %s tally: %w", c.dimension, err)
		}
	}
	return true, nil
}

type counter struct {
	dimension string
	value     string
}

// counters lists every counter a vote increments. Optional demographics are
// skipped when empty.
func (m *Maintainer) counters(v models.Vote) []counter {
	cs := []counter{
		{models.DimensionOverall, overallValue},
		{models.DimensionSemanticKey, v.SemanticKey},
	}
	if v.Demographics.Region != "" {
		cs = append(cs, counter{models.DimensionRegion, v.Demographics.Region})
	}
	if v.Demographics.AgeBand != "" {
		cs = append(cs, counter{models.DimensionAgeBand, v.Demographics.AgeBand})
	}
	if v.Demographics.Gender != "" {
		cs = append(cs, counter{models.DimensionGender, v.Demographics.Gender})
	}
	if !v.CreatedAt.IsZero() {
		cs = append(cs, counter{models.DimensionTimeBucket, TimeBucket(v.CreatedAt, m.granularity())})
	}
	return cs
}

// TimeBucket formats t (in UTC) as a sortable bucket label
func TimeBucket(t time.Time, granularity string) string {
	t = t.UTC()
	if granularity == models.BucketDay {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02T15")
}
