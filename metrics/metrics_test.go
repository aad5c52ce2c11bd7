// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.VoteAccepted()
	m.VoteAccepted()
	m.VoteRejected("AlreadyVoted")
	m.VoteRejected("")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.votesAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.votesRejected.WithLabelValues("AlreadyVoted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.votesRejected.WithLabelValues("Internal")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.VoteAccepted()
	m.VoteRejected("SubjectClosed")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "accent_vote_votes_accepted_total 1")
	assert.Contains(t, body, `accent_vote_votes_rejected_total{kind="SubjectClosed"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestNew_Independent(t *testing.T) {
	a, b := New(), New()
	a.VoteAccepted()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.votesAccepted))
}
