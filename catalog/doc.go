// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog is the read-only view of subjects and their options.

The core never writes catalog rows. Store exposes the three lookups the
resolver and ledger need; SQLStore reads them from the database and
CachedStore puts a TTL cache with collapsed concurrent misses in front:

	store := catalog.NewCachedStore(catalog.NewSQLStore(db), time.Minute)

Seed loads a YAML catalog into empty tables at startup. It only inserts
rows that do not exist yet.
*/
package catalog
