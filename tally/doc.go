// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally maintains per-subject vote counters derived from the ledger.

Counters are kept per dimension: overall, semantic_key, region, age_band,
gender and time_bucket. Each vote is folded in exactly once; the
applied_vote table records which vote ids have been counted, so repeated
applies are no-ops.

The ledger calls ApplyTx inside its insert transaction. Snapshot reads all
counters of a subject in one query. Because tallies are derived state,
Rebuild and RebuildAll can recreate them from the vote table at any time.
*/
package tally
