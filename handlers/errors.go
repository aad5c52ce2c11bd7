// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/accent-vote/middleware"
	"github.com/danielhkuo/accent-vote/models"
)

// kindInvalidRequest is reported for bodies that are not valid JSON
const kindInvalidRequest = "InvalidRequest"

// statusFor maps a domain error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrSubjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, models.ErrSubjectClosed),
		errors.Is(err, models.ErrIdentityBlocked),
		errors.Is(err, models.ErrVotingDisabled):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidFingerprint),
		errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrInvalidOptionRef),
		errors.Is(err, models.ErrOptionNotFound),
		errors.Is(err, models.ErrOptionNotAvailableForSubject),
		errors.Is(err, models.ErrSubjectOptionMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with its kind. Server-side failures are logged and
// their details kept out of the response.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	kind := models.ErrorKind(err)

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "kind", kind, "error", err)
		message := "Internal error"
		if kind != "" {
			message = "Storage temporarily unavailable, retry later"
		}
		middleware.ErrorKindResponse(w, status, kind, message)
		return
	}
	middleware.ErrorKindResponse(w, status, kind, err.Error())
}
