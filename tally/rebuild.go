// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/accent-vote/models"
)

// Rebuild discards a subject's tallies and replays every ledger vote into
// them in one transaction. Time buckets are recomputed with the current
// granularity. It returns the number of votes replayed.
func (m *Maintainer) Rebuild(ctx context.Context, subjectID int64) (int64, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tally WHERE subject_id = $1`, subjectID); err != nil {
		return 0, fmt.Errorf("failed to clear tally: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM applied_vote WHERE subject_id = $1`, subjectID); err != nil {
		return 0, fmt.Errorf("failed to clear applied votes: %w", err)
	}

	// Read everything before writing; some drivers cannot interleave an
	// open result set with statements on the same connection.
	votes, err := loadVotes(ctx, tx, subjectID)
	if err != nil {
		return 0, err
	}

	for _, v := range votes {
		if _, err := m.ApplyTx(ctx, tx, v); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rebuild: %w", err)
	}
	return int64(len(votes)), nil
}

// RebuildAll rebuilds every subject that has votes
func (m *Maintainer) RebuildAll(ctx context.Context) (int64, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT DISTINCT subject_id FROM vote
		UNION
		SELECT DISTINCT subject_id FROM tally
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to list subjects: %w", err)
	}
	var subjects []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to list subjects: %w", err)
	}

	var total int64
	for _, id := range subjects {
		n, err := m.Rebuild(ctx, id)
		if err != nil {
			return total, fmt.Errorf("rebuild subject %d: %w", id, err)
		}
		slog.Debug("tally rebuilt", "subject_id", id, "votes", n)
		total += n
	}
	return total, nil
}

func loadVotes(ctx context.Context, tx *sql.Tx, subjectID int64) ([]models.Vote, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, subject_id, option_id, semantic_key, region, age_band, gender, created_at
		FROM vote
		WHERE subject_id = $1
		ORDER BY created_at, id
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	var votes []models.Vote
	for rows.Next() {
		var v models.Vote
		var region, ageBand, gender sql.NullString
		if err := rows.Scan(&v.ID, &v.SubjectID, &v.OptionID, &v.SemanticKey,
			&region, &ageBand, &gender, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.Demographics = models.Demographics{
			Region:  region.String,
			AgeBand: ageBand.String,
			Gender:  gender.String,
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}
	return votes, nil
}
