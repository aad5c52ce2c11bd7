// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/accent-vote/catalog"
	"github.com/danielhkuo/accent-vote/db"
	"github.com/danielhkuo/accent-vote/identity"
	"github.com/danielhkuo/accent-vote/models"
	"github.com/danielhkuo/accent-vote/resolver"
	"github.com/danielhkuo/accent-vote/tally"
)

// errConflict marks a lost unique-constraint race. It never leaves the
// package: the follow-up read turns it into ErrAlreadyVoted.
var errConflict = errors.New("vote insert conflict")

// Ballot is one vote submission. Either OptionRef (legacy) or one of
// SemanticKey / OptionID is set.
type Ballot struct {
	Identity     identity.Identity
	SubjectID    int64
	OptionRef    *int64
	SemanticKey  *string
	OptionID     *int64
	Demographics models.Demographics
	IPHash       string
}

// Ledger is the only writer of vote rows
type Ledger struct {
	db       *sql.DB
	catalog  catalog.Store
	resolver *resolver.Resolver
	tally    *tally.Maintainer
	now      func() time.Time

	// nil outside tests
	testHookBeforeInsert func(ctx context.Context, tx *sql.Tx) error
	testHookAfterCommit  func() error
}

func New(db *sql.DB, store catalog.Store, tm *tally.Maintainer) *Ledger {
	return &Ledger{
		db:       db,
		catalog:  store,
		resolver: resolver.New(store),
		tally:    tm,
		now:      time.Now,
	}
}

// RecordVote resolves the ballot's target and stores the vote if the identity
// has not voted on the subject yet. The tally increments commit in the same
// transaction as the vote row.
//
// Resolver and validation errors are returned as-is. A second vote for the
// same (identity, subject) fails with models.ErrAlreadyVoted, including when
// the duplicate is only detected by the unique index. Transient storage
// faults are retried once; storage failures surface as
// models.ErrStorageUnavailable.
func (l *Ledger) RecordVote(ctx context.Context, b Ballot) (models.Vote, error) {
	if b.Identity == "" {
		return models.Vote{}, fmt.Errorf("identity is required: %w", models.ErrInvalidFingerprint)
	}

	now := l.now().UTC()
	if err := l.checkSubject(ctx, b.SubjectID, now); err != nil {
		return models.Vote{}, err
	}

	target, err := l.resolve(ctx, b)
	if err != nil {
		return models.Vote{}, err
	}

	v := models.Vote{
		ID:           uuid.NewString(),
		Identity:     b.Identity.String(),
		SubjectID:    target.SubjectID,
		OptionID:     target.OptionID,
		SemanticKey:  target.SemanticKey,
		Demographics: NormalizeDemographics(b.Demographics),
		CreatedAt:    now,
	}
	if b.IPHash != "" {
		v.IPHash = &b.IPHash
	}

	for attempt := 1; attempt <= 2; attempt++ {
		err = l.insert(ctx, v)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, models.ErrAlreadyVoted) {
			return models.Vote{}, err
		}

		// Find out what actually happened before deciding.
		existing, found, lookupErr := l.Find(ctx, b.Identity, v.SubjectID)
		if lookupErr == nil && found {
			if existing.ID == v.ID {
				// Commit succeeded but its acknowledgement was lost
				return existing, nil
			}
			return models.Vote{}, fmt.Errorf("subject %d: %w", v.SubjectID, models.ErrAlreadyVoted)
		}
		if ctx.Err() != nil || !(errors.Is(err, errConflict) || db.IsTransient(err)) {
			break
		}
		slog.Warn("vote insert failed, retrying", "subject_id", v.SubjectID, "attempt", attempt, "error", err)
	}

	return models.Vote{}, fmt.Errorf("record vote: %w: %w", models.ErrStorageUnavailable, err)
}

func (l *Ledger) checkSubject(ctx context.Context, subjectID int64, now time.Time) error {
	if subjectID <= 0 {
		return fmt.Errorf("subject %d: %w", subjectID, models.ErrSubjectNotFound)
	}
	subj, err := l.catalog.GetSubject(ctx, subjectID)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("subject %d: %w", subjectID, models.ErrSubjectNotFound)
	}
	if err != nil {
		return err
	}
	if !subj.Open(now) {
		return fmt.Errorf("subject %d: %w", subjectID, models.ErrSubjectClosed)
	}
	return nil
}

func (l *Ledger) resolve(ctx context.Context, b Ballot) (models.Target, error) {
	if b.OptionRef != nil {
		if b.SemanticKey != nil || b.OptionID != nil {
			return models.Target{}, fmt.Errorf("option_ref cannot be combined with semantic_key or option_id: %w", models.ErrInvalidOptionRef)
		}
		return l.resolver.Resolve(ctx, b.SubjectID, *b.OptionRef)
	}
	return l.resolver.ResolveExplicit(ctx, b.SubjectID, b.SemanticKey, b.OptionID)
}

// insert runs check-then-insert in one transaction. The UNIQUE (identity,
// subject_id) index is what makes it safe across instances; the SELECT
// only avoids the common-case constraint error.
func (l *Ledger) insert(ctx context.Context, v models.Vote) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM vote WHERE identity = $1 AND subject_id = $2
	`, v.Identity, v.SubjectID).Scan(&existingID)
	if err == nil {
		return fmt.Errorf("subject %d: %w", v.SubjectID, models.ErrAlreadyVoted)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing vote: %w", err)
	}

	if l.testHookBeforeInsert != nil {
		if err := l.testHookBeforeInsert(ctx, tx); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, identity, subject_id, option_id, semantic_key,
		                  region, age_band, gender, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, v.ID, v.Identity, v.SubjectID, v.OptionID, v.SemanticKey,
		nullString(v.Demographics.Region), nullString(v.Demographics.AgeBand),
		nullString(v.Demographics.Gender), ipHash(v.IPHash), v.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", errConflict, err)
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	if _, err := l.tally.ApplyTx(ctx, tx, v); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vote: %w", err)
	}
	if l.testHookAfterCommit != nil {
		return l.testHookAfterCommit()
	}
	return nil
}

// Find returns the vote an identity cast on a subject, if any
func (l *Ledger) Find(ctx context.Context, id identity.Identity, subjectID int64) (models.Vote, bool, error) {
	var v models.Vote
	var region, ageBand, gender, ipHash sql.NullString
	err := l.db.QueryRowContext(ctx, `
		SELECT id, identity, subject_id, option_id, semantic_key,
		       region, age_band, gender, ip_hash, created_at
		FROM vote
		WHERE identity = $1 AND subject_id = $2
	`, id.String(), subjectID).Scan(&v.ID, &v.Identity, &v.SubjectID, &v.OptionID, &v.SemanticKey,
		&region, &ageBand, &gender, &ipHash, &v.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Vote{}, false, nil
	}
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("query vote: %w: %w", models.ErrStorageUnavailable, err)
	}

	v.Demographics = models.Demographics{Region: region.String, AgeBand: ageBand.String, Gender: gender.String}
	if ipHash.Valid {
		v.IPHash = &ipHash.String
	}
	return v, true, nil
}

// NormalizeDemographics trims every field and folds gender into the known
// vocabulary. Unknown non-empty genders become models.GenderOther.
func NormalizeDemographics(d models.Demographics) models.Demographics {
	d.Region = strings.TrimSpace(d.Region)
	d.AgeBand = strings.TrimSpace(d.AgeBand)
	d.Gender = strings.ToLower(strings.TrimSpace(d.Gender))

	switch d.Gender {
	case "", models.GenderMale, models.GenderFemale, models.GenderOther, models.GenderUnknown:
	default:
		d.Gender = models.GenderOther
	}
	return d
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ipHash(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return nullString(*p)
}
