package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  int
	DatabaseURL           string
	DatabaseType          string
	CookieSecret          string
	PreviousCookieSecrets []string
	CookieMaxAge          time.Duration
	IPHashSalt            string
	SettingsFile          string
	SeedFile              string
	CatalogCacheTTL       time.Duration
	RebuildOnStart        bool
}

// ParseFlags validates flags and sets port number.
// Precedence: CLI flag, then environment, then the .env file, then defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, previousSecrets string

	fs := flag.NewFlagSet("accent-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.CookieSecret, "cookie-secret", "", "Cookie sealing secret (prefer env)")
	fs.StringVar(&previousSecrets, "previous-cookie-secrets", "", "Comma separated rotated-out cookie secrets (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	fs.DurationVar(&cfg.CookieMaxAge, "cookie-max-age", 0, "Maximum session cookie age")
	fs.StringVar(&cfg.SettingsFile, "settings", "", "Settings YAML file (hot reloaded)")
	fs.StringVar(&cfg.SeedFile, "seed", "", "Catalog seed YAML file")
	fs.DurationVar(&cfg.CatalogCacheTTL, "catalog-ttl", 0, "Catalog cache TTL")
	fs.BoolVar(&cfg.RebuildOnStart, "rebuild", false, "Rebuild all tallies from the vote ledger on start")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Load .env without overriding the real environment
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !isNotExist(err) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE %q", cfg.DatabaseType)
	}

	if cfg.CookieMaxAge == 0 {
		if v := os.Getenv("COOKIE_MAX_AGE"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid COOKIE_MAX_AGE env variable")
			}
			cfg.CookieMaxAge = d
		} else {
			cfg.CookieMaxAge = 365 * 24 * time.Hour
		}
	}
	if cfg.CatalogCacheTTL == 0 {
		cfg.CatalogCacheTTL = time.Minute
	}
	if cfg.SettingsFile == "" {
		cfg.SettingsFile = os.Getenv("SETTINGS_FILE")
	}
	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}
	if !cfg.RebuildOnStart {
		cfg.RebuildOnStart = os.Getenv("REBUILD_ON_START") == "true"
	}

	// Secrets - MUST be provided
	if cfg.CookieSecret == "" {
		cfg.CookieSecret = os.Getenv("COOKIE_SECRET")
	}
	if cfg.CookieSecret == "" {
		return Config{}, errors.New("COOKIE_SECRET required")
	}

	if previousSecrets == "" {
		previousSecrets = os.Getenv("PREVIOUS_COOKIE_SECRETS")
	}
	for _, s := range strings.Split(previousSecrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.PreviousCookieSecrets = append(cfg.PreviousCookieSecrets, s)
		}
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	return cfg, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
