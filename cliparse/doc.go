// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - CookieSecret: Secret the session cookie key is derived from (required)
  - PreviousCookieSecrets: Rotated-out secrets still accepted for unsealing
  - CookieMaxAge: Oldest accepted session cookie (default: 365 days)
  - IPHashSalt: Secret for IP hashing (required)
  - SettingsFile: Hot-reloaded settings YAML (optional)
  - SeedFile: Catalog seed YAML (optional)
  - CatalogCacheTTL: Catalog lookup cache lifetime (default: 1m)
  - RebuildOnStart: Recompute all tallies from the ledger at startup

# CLI Flags

	-p                       Server port
	-d                       Database URL
	-t                       Database type
	-env-file                Dotenv file (default: .env, missing is fine)
	-cookie-secret           Cookie secret
	-previous-cookie-secrets Comma separated old cookie secrets
	-cookie-max-age          Session cookie max age
	-ip-salt                 IP hash salt
	-settings                Settings file
	-seed                    Catalog seed file
	-catalog-ttl             Catalog cache TTL
	-rebuild                 Rebuild tallies on start

# Environment Variables

Flags fall back to environment variables:

	PORT                    → -p
	DATABASE_URL            → -d
	DATABASE_TYPE           → -t
	COOKIE_SECRET           → -cookie-secret
	PREVIOUS_COOKIE_SECRETS → -previous-cookie-secrets
	COOKIE_MAX_AGE          → -cookie-max-age
	IP_HASH_SALT            → -ip-salt
	SETTINGS_FILE           → -settings
	SEED_FILE               → -seed
	REBUILD_ON_START        → -rebuild

CLI flags take precedence over environment variables. Variables from the
dotenv file only fill in what the environment leaves unset.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - COOKIE_SECRET must be provided
  - IP_HASH_SALT must be provided
*/
package cliparse
