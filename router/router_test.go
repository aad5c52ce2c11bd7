// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/accent-vote/auth"
	"github.com/danielhkuo/accent-vote/catalog"
	"github.com/danielhkuo/accent-vote/ledger"
	"github.com/danielhkuo/accent-vote/metrics"
	"github.com/danielhkuo/accent-vote/models"
	"github.com/danielhkuo/accent-vote/settings"
	"github.com/danielhkuo/accent-vote/tally"
	"github.com/danielhkuo/accent-vote/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { db.Close() })

	cfg := testutil.GetTestConfig()
	guard, err := auth.NewGuard(cfg.CookieSecret)
	if err != nil {
		t.Fatalf("Failed to create guard: %v", err)
	}
	st, err := settings.NewStore("")
	if err != nil {
		t.Fatalf("Failed to create settings: %v", err)
	}
	store := catalog.NewCachedStore(catalog.NewSQLStore(db), cfg.CatalogCacheTTL)
	tm := tally.New(db, tally.WithGranularity(st.TimeBucket))

	mux := NewRouter(Deps{
		DB:       db,
		Config:   cfg,
		Catalog:  store,
		Ledger:   ledger.New(db, store, tm),
		Tally:    tm,
		Guard:    guard,
		Settings: st,
		Metrics:  metrics.New(),
	})
	return mux, db
}

func TestHealthEndpoint(t *testing.T) {
	mux, db := newTestRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}

	db.Close()
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 with a closed database, got %d", w.Code)
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "accent-vote API v1" {
		t.Errorf("Unexpected body '%s'", w.Body.String())
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/no-such-route", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/metrics"},
		{"POST", "/identity"},
		{"POST", "/subjects/1/votes"},
		{"GET", "/subjects/1/my-vote"},
		{"GET", "/subjects/1/statistics"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))

			// 400 and 404 are valid handler responses here
			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"GET", "/identity"},
		{"GET", "/subjects/1/votes"},
		{"DELETE", "/subjects/1/statistics"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405, got %d", w.Code)
			}
		})
	}
}

func TestVoteFlow(t *testing.T) {
	mux, db := newTestRouter(t)
	testutil.CreateTestSubject(t, db, 1, "hashi")
	testutil.AddTestOption(t, db, 1, 101, "1")
	testutil.AddTestOption(t, db, 1, 102, "2")

	fp := models.FingerprintRequest{UserAgent: "Mozilla/5.0", Timezone: "Asia/Tokyo"}

	// Establish the session
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/identity", models.IdentityRequest{Fingerprint: fp}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Expected session cookie")
	}

	vote := func(optionRef int64) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/subjects/1/votes", models.CastVoteRequest{OptionRef: &optionRef}, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	w = vote(2)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CastVoteResponse
	testutil.AssertJSON(t, w, &created)
	if created.OptionID != 102 {
		t.Errorf("Expected option 102, got %d", created.OptionID)
	}

	testutil.AssertStatus(t, vote(1), http.StatusConflict)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/subjects/1/statistics", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var snap models.Snapshot
	testutil.AssertJSON(t, w, &snap)
	if snap.Overall != 1 || snap.BySemanticKey[0].Key != "2" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(w.Body.String(), "accent_vote_votes_accepted_total 1") {
		t.Error("Expected accepted vote in metrics")
	}
}
