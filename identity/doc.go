// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity derives anonymous voter identities.

# Fingerprints

A Fingerprint carries the user agent (required), screen resolution,
timezone, language and platform of a device:

	id, err := identity.Derive(identity.Fingerprint{UserAgent: ua, Timezone: "Asia/Tokyo"})

Derive is a pure function: the same fingerprint always yields the same
64-character hex identity, across calls and process restarts. The server
stores only this hash, never the raw fingerprint.

Fingerprint identity is approximate. Two users with identical browsers
collide, and a browser update produces a new identity. It is only used to
enforce one vote per fingerprint per subject.

# Authenticated Users

	id, err := identity.FromUser("42")  // "user:42"

User identities are prefixed so they can never equal a fingerprint hash.
*/
package identity
