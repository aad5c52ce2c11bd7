// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/accent-vote/models"
	"github.com/danielhkuo/accent-vote/testutil"
)

var base = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func vote(n int, key, region, gender string, at time.Time) models.Vote {
	return models.Vote{
		ID:           fmt.Sprintf("vote-%03d", n),
		Identity:     fmt.Sprintf("voter-%03d", n),
		SubjectID:    1,
		OptionID:     100 + int64(len(key)),
		SemanticKey:  key,
		Demographics: models.Demographics{Region: region, Gender: gender},
		CreatedAt:    at,
	}
}

// insertVote writes a ledger row without touching the tallies
func insertVote(t *testing.T, db *sql.DB, v models.Vote) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO vote (id, identity, subject_id, option_id, semantic_key, region, gender, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, v.ID, v.Identity, v.SubjectID, v.OptionID, v.SemanticKey,
		sql.NullString{String: v.Demographics.Region, Valid: v.Demographics.Region != ""},
		sql.NullString{String: v.Demographics.Gender, Valid: v.Demographics.Gender != ""},
		v.CreatedAt)
	require.NoError(t, err)
}

func setup(t *testing.T) *sql.DB {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.CreateTestSubject(t, db, 1, "hashi")
	testutil.AddTestOption(t, db, 1, 101, "1")
	testutil.AddTestOption(t, db, 1, 102, "2")
	return db
}

func TestApply_Idempotent(t *testing.T) {
	db := setup(t)
	defer db.Close()
	m := New(db)
	ctx := context.Background()

	v := vote(1, "1", "13", models.GenderMale, base)

	applied, err := m.Apply(ctx, v)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = m.Apply(ctx, v)
	require.NoError(t, err)
	assert.False(t, applied, "second apply of the same vote id must be a no-op")

	snap, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Overall)
	assert.Equal(t, []models.Breakdown{{Key: "1", Count: 1, Percentage: 100}}, snap.BySemanticKey)
	assert.Equal(t, []models.Breakdown{{Key: models.GenderMale, Count: 1, Percentage: 100}}, snap.ByGender)
	assert.Empty(t, snap.ByAgeBand)
}

func TestApplyTx_RollsBackWithCaller(t *testing.T) {
	db := setup(t)
	defer db.Close()
	m := New(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	applied, err := m.ApplyTx(ctx, tx, vote(1, "1", "", "", base))
	require.NoError(t, err)
	assert.True(t, applied)
	require.NoError(t, tx.Rollback())

	snap, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, snap.Overall)

	// The rolled back vote can still be applied later
	applied, err = m.Apply(ctx, vote(1, "1", "", "", base))
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestSnapshot_OrderingAndPercentages(t *testing.T) {
	db := setup(t)
	defer db.Close()
	m := New(db)
	ctx := context.Background()

	votes := []models.Vote{
		vote(1, "2", "27", "", base),
		vote(2, "2", "13", "", base),
		vote(3, "1", "13", "", base),
		vote(4, "2", "01", "", base),
	}
	for _, v := range votes {
		_, err := m.Apply(ctx, v)
		require.NoError(t, err)
	}

	snap, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.Overall)
	assert.Equal(t, []models.Breakdown{
		{Key: "2", Count: 3, Percentage: 75},
		{Key: "1", Count: 1, Percentage: 25},
	}, snap.BySemanticKey)

	// Ties break on key ascending
	assert.Equal(t, []models.Breakdown{
		{Key: "13", Count: 2, Percentage: 50},
		{Key: "01", Count: 1, Percentage: 25},
		{Key: "27", Count: 1, Percentage: 25},
	}, snap.ByRegion)
}

func TestSnapshot_Empty(t *testing.T) {
	db := setup(t)
	defer db.Close()

	snap, err := New(db).Snapshot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.SubjectID)
	assert.Zero(t, snap.Overall)
	assert.NotNil(t, snap.BySemanticKey)
	assert.Empty(t, snap.BySemanticKey)
	assert.NotNil(t, snap.ByTimeBucket)
}

func TestSnapshot_TimeBuckets(t *testing.T) {
	tests := []struct {
		name        string
		granularity string
		want        []string
	}{
		{"hour", models.BucketHour, []string{"2025-02-28T23", "2025-03-01T09", "2025-03-01T10"}},
		{"day", models.BucketDay, []string{"2025-02-28", "2025-03-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setup(t)
			defer db.Close()
			m := New(db, WithGranularity(func() string { return tt.granularity }))
			ctx := context.Background()

			tokyo := time.FixedZone("JST", 9*60*60)
			at := []time.Time{
				base.Add(time.Hour),
				base,
				base.Add(5 * time.Minute),
				time.Date(2025, 3, 1, 8, 0, 0, 0, tokyo), // 2025-02-28T23 UTC
			}
			for i, ts := range at {
				_, err := m.Apply(ctx, vote(i, "1", "", "", ts))
				require.NoError(t, err)
			}

			snap, err := m.Snapshot(ctx, 1)
			require.NoError(t, err)
			var keys []string
			var total int64
			for _, b := range snap.ByTimeBucket {
				keys = append(keys, b.Key)
				total += b.Count
			}
			assert.Equal(t, tt.want, keys, "buckets are chronological")
			assert.Equal(t, snap.Overall, total)
		})
	}
}

func TestTimeBucket(t *testing.T) {
	ts := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2025-12-31T23", TimeBucket(ts, models.BucketHour))
	assert.Equal(t, "2025-12-31", TimeBucket(ts, models.BucketDay))
	assert.Equal(t, "2025-12-31T23", TimeBucket(ts, "unknown"))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 50.0, Percentage(1, 2))
	assert.InDelta(t, 33.333, Percentage(1, 3), 0.001)
}

func TestRebuild(t *testing.T) {
	db := setup(t)
	defer db.Close()
	m := New(db)
	ctx := context.Background()

	votes := []models.Vote{
		vote(1, "1", "13", models.GenderFemale, base),
		vote(2, "2", "13", "", base.Add(time.Hour)),
		vote(3, "2", "", models.GenderMale, base.Add(2*time.Hour)),
	}
	for _, v := range votes {
		insertVote(t, db, v)
		_, err := m.Apply(ctx, v)
		require.NoError(t, err)
	}
	before, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)

	// Corrupt the derived state
	_, err = db.Exec(`UPDATE tally SET vote_count = 99 WHERE dimension = $1`, models.DimensionSemanticKey)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM tally WHERE dimension = $1`, models.DimensionRegion)
	require.NoError(t, err)

	n, err := m.Rebuild(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	after, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Rebuilding twice changes nothing
	_, err = m.Rebuild(ctx, 1)
	require.NoError(t, err)
	again, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, after, again)
}

func TestRebuild_GranularityChange(t *testing.T) {
	db := setup(t)
	defer db.Close()
	granularity := models.BucketHour
	m := New(db, WithGranularity(func() string { return granularity }))
	ctx := context.Background()

	first := vote(1, "1", "", "", base)
	insertVote(t, db, first)
	_, err := m.Apply(ctx, first)
	require.NoError(t, err)

	granularity = models.BucketDay
	second := vote(2, "2", "", "", base.Add(time.Hour))
	insertVote(t, db, second)
	_, err = m.Apply(ctx, second)
	require.NoError(t, err)

	bucketKeys := func() []string {
		snap, err := m.Snapshot(ctx, 1)
		require.NoError(t, err)
		var keys []string
		for _, b := range snap.ByTimeBucket {
			keys = append(keys, b.Key)
		}
		return keys
	}

	// Counters applied before the switch keep their hour labels
	assert.ElementsMatch(t, []string{"2025-03-01T09", "2025-03-01"}, bucketKeys())

	_, err = m.Rebuild(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-01"}, bucketKeys())

	snap, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snap.ByTimeBucket, 1)
	assert.Equal(t, int64(2), snap.ByTimeBucket[0].Count)
}

func TestRebuildAll(t *testing.T) {
	db := setup(t)
	defer db.Close()
	testutil.CreateTestSubject(t, db, 2, "ame")
	testutil.AddTestOption(t, db, 2, 201, "1")
	m := New(db)
	ctx := context.Background()

	// Ledger rows that were never applied
	insertVote(t, db, vote(1, "1", "", "", base))
	insertVote(t, db, vote(2, "2", "", "", base))
	other := vote(3, "1", "", "", base)
	other.SubjectID = 2
	other.OptionID = 201
	insertVote(t, db, other)

	// A stale tally for a subject without votes is cleared
	_, err := db.Exec(`INSERT INTO tally (subject_id, dimension, dimension_value, vote_count) VALUES (7, $1, '*', 4)`, models.DimensionOverall)
	require.NoError(t, err)

	total, err := m.RebuildAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	snap, err := m.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Overall)

	snap, err = m.Snapshot(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Overall)

	snap, err = m.Snapshot(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, snap.Overall)
}
