// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/danielhkuo/accent-vote/models"
)

// userPrefix namespaces authenticated identities. Fingerprint identities are
// pure lowercase hex, so the colon keeps the two spaces disjoint.
const userPrefix = "user:"

// Identity is an opaque voter token
type Identity string

func (id Identity) String() string { return string(id) }

// IsUser reports whether the identity belongs to an authenticated user
func (id Identity) IsUser() bool {
	return strings.HasPrefix(string(id), userPrefix)
}

// Fingerprint describes the client device. UserAgent is required.
type Fingerprint struct {
	UserAgent        string
	ScreenResolution string
	Timezone         string
	Language         string
	Platform         string
}

// FromRequest converts the wire form
func FromRequest(r models.FingerprintRequest) Fingerprint {
	return Fingerprint{
		UserAgent:        r.UserAgent,
		ScreenResolution: r.ScreenResolution,
		Timezone:         r.Timezone,
		Language:         r.Language,
		Platform:         r.Platform,
	}
}

// Derive hashes a fingerprint into an Identity.
//
// Fields are written in a fixed order, each one name- and length-prefixed, so
// that no two distinct fingerprints serialize to the same bytes. The result is
// the hex SHA-256 of that encoding.
func Derive(fp Fingerprint) (Identity, error) {
	if strings.TrimSpace(fp.UserAgent) == "" {
		return "", fmt.Errorf("user agent is required: %w", models.ErrInvalidFingerprint)
	}

	h := sha256.New()
	fields := []struct {
		name  string
		value string
	}{
		{"user_agent", fp.UserAgent},
		{"screen_resolution", fp.ScreenResolution},
		{"timezone", fp.Timezone},
		{"language", fp.Language},
		{"platform", fp.Platform},
	}
	for _, f := range fields {
		writeField(h, f.name)
		writeField(h, f.value)
	}

	return Identity(hex.EncodeToString(h.Sum(nil))), nil
}

// FromUser returns the identity of an authenticated user
func FromUser(userID string) (Identity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("user id is required: %w", models.ErrInvalidFingerprint)
	}
	return Identity(userPrefix + userID), nil
}

func writeField(w io.Writer, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	w.Write(n[:])
	w.Write([]byte(s))
}
