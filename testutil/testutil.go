// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielhkuo/accent-vote/cliparse"
	"github.com/danielhkuo/accent-vote/db"
)

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupPostgresDB connects to TEST_DATABASE_URL, resets the schema, and
// skips the test when the variable is unset. Concurrency tests use it to
// exercise real row-level locking.
func SetupPostgresDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(db.TypePostgres, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	_, err = conn.Exec(`
		DROP TABLE IF EXISTS applied_vote CASCADE;
		DROP TABLE IF EXISTS tally CASCADE;
		DROP TABLE IF EXISTS vote CASCADE;
		DROP TABLE IF EXISTS subject_option CASCADE;
		DROP TABLE IF EXISTS subject CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     ":memory:",
		DatabaseType:    db.TypeSQLite,
		CookieSecret:    "test-cookie-secret",
		CookieMaxAge:    24 * time.Hour,
		IPHashSalt:      "test-ip-salt",
		CatalogCacheTTL: time.Minute,
	}
}

// CreateTestSubject inserts an always-open subject
func CreateTestSubject(t *testing.T, db *sql.DB, id int64, label string) {
	t.Helper()
	CreateTestSubjectWindow(t, db, id, label, nil, nil)
}

// CreateTestSubjectWindow inserts a subject with a validity window
func CreateTestSubjectWindow(t *testing.T, db *sql.DB, id int64, label string, startsAt, endsAt *time.Time) {
	t.Helper()

	var starts, ends sql.NullTime
	if startsAt != nil {
		starts = sql.NullTime{Time: *startsAt, Valid: true}
	}
	if endsAt != nil {
		ends = sql.NullTime{Time: *endsAt, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO subject (id, label, created_at, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, label, time.Now().UTC(), starts, ends)
	if err != nil {
		t.Fatalf("Failed to create test subject: %v", err)
	}
}

// AddTestOption adds an option to a subject
func AddTestOption(t *testing.T, db *sql.DB, subjectID, optionID int64, semanticKey string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO subject_option (id, subject_id, semantic_key, label, display_order)
		VALUES ($1, $2, $3, $4, $5)
	`, optionID, subjectID, semanticKey, "Option "+semanticKey, 0)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}
}

// CountVotes returns the number of ledger rows for a subject
func CountVotes(t *testing.T, db *sql.DB, subjectID int64) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE subject_id = $1`, subjectID).Scan(&n); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
