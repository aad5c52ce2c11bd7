// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrInvalidFingerprint           = errors.New("invalid fingerprint")
	ErrInvalidOptionRef             = errors.New("invalid option reference")
	ErrOptionNotFound               = errors.New("option not found")
	ErrOptionNotAvailableForSubject = errors.New("option not available for subject")
	ErrSubjectOptionMismatch        = errors.New("option belongs to a different subject")
	ErrAlreadyVoted                 = errors.New("already voted")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrStorageUnavailable           = errors.New("storage unavailable")
	ErrSubjectNotFound              = errors.New("subject not found")
	ErrSubjectClosed                = errors.New("subject is not open for voting")
	ErrIdentityBlocked              = errors.New("identity is blocked")
	ErrVotingDisabled               = errors.New("voting is disabled")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidFingerprint, "InvalidFingerprint"},
	{ErrInvalidOptionRef, "InvalidOptionRef"},
	{ErrOptionNotFound, "OptionNotFound"},
	{ErrOptionNotAvailableForSubject, "OptionNotAvailableForSubject"},
	{ErrSubjectOptionMismatch, "SubjectOptionMismatch"},
	{ErrAlreadyVoted, "AlreadyVoted"},
	{ErrInvalidToken, "InvalidToken"},
	{ErrStorageUnavailable, "StorageUnavailable"},
	{ErrSubjectNotFound, "SubjectNotFound"},
	{ErrSubjectClosed, "SubjectClosed"},
	{ErrIdentityBlocked, "IdentityBlocked"},
	{ErrVotingDisabled, "VotingDisabled"},
}

// ErrorKind returns the stable wire name for err, or "" when err does not
// wrap one of the sentinel errors above.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}
