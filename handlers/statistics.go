// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/danielhkuo/accent-vote/catalog"
	"github.com/danielhkuo/accent-vote/middleware"
	"github.com/danielhkuo/accent-vote/models"
	"github.com/danielhkuo/accent-vote/tally"
)

type StatisticsHandler struct {
	tally   *tally.Maintainer
	catalog catalog.Store
}

func NewStatisticsHandler(tm *tally.Maintainer, store catalog.Store) *StatisticsHandler {
	return &StatisticsHandler{tally: tm, catalog: store}
}

// GetStatistics handles GET /subjects/{id}/statistics
// Statistics are public and available while the subject is still open.
func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	subjectID, err := subjectIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.catalog.GetSubject(r.Context(), subjectID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			err = fmt.Errorf("subject %d: %w", subjectID, models.ErrSubjectNotFound)
		}
		writeError(w, err)
		return
	}

	snap, err := h.tally.Snapshot(r.Context(), subjectID)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}
