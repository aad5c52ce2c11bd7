// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the accent-vote API.

# Handler Types

  - IdentityHandler: issues the sealed session cookie
  - VotingHandler: vote submission and lookup of the caller's own vote
  - StatisticsHandler: per-subject tallies

# Identity

Every vote is attributed to one identity, chosen in this order:

 1. X-User-ID header (authenticated user, "user:<id>")
 2. av_session cookie, sealed by auth.Guard
 3. fingerprint in the request body

POST /identity derives the fingerprint identity up front and sets the
cookie. A cookie that fails to open is cleared and the fingerprint is used.

# Voting

	POST /subjects/{id}/votes    → CastVote
	GET  /subjects/{id}/my-vote  → GetMyVote

The body names the option either with the legacy option_ref or with one of
semantic_key and option_id. Errors carry a kind alongside the status:

	400  InvalidRequest, InvalidFingerprint, InvalidToken, InvalidOptionRef,
	     OptionNotFound, OptionNotAvailableForSubject, SubjectOptionMismatch
	403  SubjectClosed, IdentityBlocked, VotingDisabled
	404  SubjectNotFound
	409  AlreadyVoted
	503  StorageUnavailable

# Statistics

	GET /subjects/{id}/statistics → GetStatistics

Returns the overall count and breakdowns by semantic key, region, age band,
gender and time bucket.
*/
package handlers
