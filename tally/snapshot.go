// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"fmt"
	"sort"

	"github.com/danielhkuo/accent-vote/models"
)

// Snapshot reads every counter of a subject in a single query, so the
// breakdowns are consistent with Overall.
//
// Breakdowns are sorted by count descending, ties by key ascending. Time
// buckets are sorted chronologically instead.
func (m *Maintainer) Snapshot(ctx context.Context, subjectID int64) (models.Snapshot, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT dimension, dimension_value, vote_count
		FROM tally
		WHERE subject_id = $1
	`, subjectID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("query tally: %w: %w", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	snap := models.Snapshot{
		SubjectID:     subjectID,
		BySemanticKey: []models.Breakdown{},
		ByRegion:      []models.Breakdown{},
		ByAgeBand:     []models.Breakdown{},
		ByGender:      []models.Breakdown{},
		ByTimeBucket:  []models.Breakdown{},
	}

	for rows.Next() {
		var dim, value string
		var count int64
		if err := rows.Scan(&dim, &value, &count); err != nil {
			return models.Snapshot{}, fmt.Errorf("scan tally: %w: %w", models.ErrStorageUnavailable, err)
		}

		b := models.Breakdown{Key: value, Count: count}
		switch dim {
		case models.DimensionOverall:
			snap.Overall = count
		case models.DimensionSemanticKey:
			snap.BySemanticKey = append(snap.BySemanticKey, b)
		case models.DimensionRegion:
			snap.ByRegion = append(snap.ByRegion, b)
		case models.DimensionAgeBand:
			snap.ByAgeBand = append(snap.ByAgeBand, b)
		case models.DimensionGender:
			snap.ByGender = append(snap.ByGender, b)
		case models.DimensionTimeBucket:
			snap.ByTimeBucket = append(snap.ByTimeBucket, b)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Snapshot{}, fmt.Errorf("read tally: %w: %w", models.ErrStorageUnavailable, err)
	}

	for _, list := range [][]models.Breakdown{snap.BySemanticKey, snap.ByRegion, snap.ByAgeBand, snap.ByGender} {
		setPercentages(list, snap.Overall)
		sortByCount(list)
	}
	setPercentages(snap.ByTimeBucket, snap.Overall)
	sort.Slice(snap.ByTimeBucket, func(i, j int) bool {
		return snap.ByTimeBucket[i].Key < snap.ByTimeBucket[j].Key
	})

	return snap, nil
}

// Percentage is count/overall*100, or 0 when there are no votes
func Percentage(count, overall int64) float64 {
	if overall == 0 {
		return 0
	}
	return float64(count) / float64(overall) * 100
}

func setPercentages(list []models.Breakdown, overall int64) {
	for i := range list {
		list[i].Percentage = Percentage(list[i].Count, overall)
	}
}

func sortByCount(list []models.Breakdown) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Key < list[j].Key
	})
}
