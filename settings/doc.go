// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package settings is the versioned runtime configuration store.

Settings come from an optional YAML file:

	voting_enabled: true
	time_bucket: hour        # or day
	blocked_identities:
	  - user:spammer
	  - 3f1c...              # fingerprint identity

Every successful load or Update publishes a new immutable Snapshot with a
higher Version. Handlers are given the Store and read one Snapshot per
request. Watch reloads the file on change; a broken edit is logged and the
previous snapshot stays in effect.

Changing time_bucket affects only votes applied afterwards. Existing time
bucket counters keep their old labels, so a subject's statistics mix hour
and day buckets until its tallies are rebuilt (tally.Maintainer.Rebuild, or
RebuildAll at startup with -rebuild).
*/
package settings
