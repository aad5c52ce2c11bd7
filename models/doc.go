// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - IdentityRequest: fingerprint
  - CastVoteRequest: option_ref (legacy) or semantic_key / option_id,
    optional fingerprint and demographics

# Response Types

  - IdentityResponse: identity_set
  - CastVoteResponse: vote_id and the canonical target
  - Snapshot: statistics for a subject
  - ErrorResponse: error, kind, message

# Domain Types

  - Subject: the thing being voted on, with an optional validity window
  - Option: one alternative of a subject, tagged with a semantic key
  - Target: canonical (subject, option, semantic key) triple
  - Vote: immutable ledger record
  - Demographics: optional region, age band and gender

# Errors

The sentinel errors in errors.go form the error taxonomy shared by every
package. ErrorKind maps an error chain to its stable wire name:

	models.ErrorKind(fmt.Errorf("record vote: %w", models.ErrAlreadyVoted)) // "AlreadyVoted"
*/
package models
