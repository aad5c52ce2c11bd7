// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("COOKIE_SECRET", "test-cookie-secret")
	t.Setenv("IP_HASH_SALT", "test-ip-salt")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("PREVIOUS_COOKIE_SECRETS", "old-1, old-2,,")
	t.Setenv("COOKIE_MAX_AGE", "48h")

	cfg, err := ParseFlags([]string{"-env-file", ""})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if len(cfg.PreviousCookieSecrets) != 2 || cfg.PreviousCookieSecrets[1] != "old-2" {
		t.Errorf("unexpected previous secrets: %v", cfg.PreviousCookieSecrets)
	}
	if cfg.CookieMaxAge != 48*time.Hour {
		t.Errorf("expected 48h cookie max age, got %s", cfg.CookieMaxAge)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:other.db", "-cookie-secret", "s1", "-ip-salt", "s2", "-env-file", ""})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file:other.db" || cfg.CookieSecret != "s1" || cfg.IPHashSalt != "s2" {
		t.Errorf("CLI values not applied: %+v", cfg)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("COOKIE_MAX_AGE", "")

	cfg, err := ParseFlags([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.CookieMaxAge != 365*24*time.Hour {
		t.Errorf("unexpected default cookie max age %s", cfg.CookieMaxAge)
	}
	if cfg.CatalogCacheTTL != time.Minute {
		t.Errorf("unexpected default catalog ttl %s", cfg.CatalogCacheTTL)
	}
}

func TestParseFlags_DotEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("COOKIE_SECRET", "from-env")
	t.Setenv("IP_HASH_SALT", "")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "DATABASE_URL=file:dotenv.db\nCOOKIE_SECRET=from-dotenv\nIP_HASH_SALT=dotenv-salt\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load sets variables that are unset; t.Setenv("", ...) leaves
	// them set to empty, so clear them for this test.
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("IP_HASH_SALT")

	cfg, err := ParseFlags([]string{"-env-file", envFile})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DatabaseURL != "file:dotenv.db" {
		t.Errorf("expected URL from .env, got %s", cfg.DatabaseURL)
	}
	// Real environment wins over the file
	if cfg.CookieSecret != "from-env" {
		t.Errorf("expected environment to win, got %s", cfg.CookieSecret)
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("COOKIE_SECRET", "")
	t.Setenv("IP_HASH_SALT", "salt")

	if _, err := ParseFlags([]string{"-env-file", ""}); err == nil {
		t.Error("expected error when COOKIE_SECRET is missing")
	}

	t.Setenv("COOKIE_SECRET", "secret")
	t.Setenv("IP_HASH_SALT", "")
	if _, err := ParseFlags([]string{"-env-file", ""}); err == nil {
		t.Error("expected error when IP_HASH_SALT is missing")
	}
}

func TestParseFlags_UnsupportedDatabaseType(t *testing.T) {
	setRequiredEnv(t)
	if _, err := ParseFlags([]string{"-t", "mysql", "-env-file", ""}); err == nil {
		t.Error("expected error for unsupported database type")
	}
}
