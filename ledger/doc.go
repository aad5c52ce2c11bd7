// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger stores votes and enforces one vote per identity per subject.

RecordVote is the single write path. It checks the subject's validity
window, resolves the ballot through the resolver, and inserts the vote and
its tally increments in one transaction:

	v, err := l.RecordVote(ctx, ledger.Ballot{
		Identity:  id,
		SubjectID: 42,
		OptionRef: &ref,
	})

The UNIQUE (identity, subject_id) index is the final arbiter. When two
requests race, the loser's insert fails on the index and is reported as
models.ErrAlreadyVoted after a re-read confirms another vote owns the pair.
A commit whose acknowledgement was lost is detected the same way and
returned as success. Other storage faults are retried once.
*/
package ledger
