// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth seals voter identities into cookies and hashes client IPs.

# Session Cookies

A Guard keeps a voter's identity on the client so repeat visits reuse it
without a server-side session store:

	guard, err := auth.NewGuard(secret, auth.WithMaxAge(365*24*time.Hour))
	token, err := guard.Seal(id)
	id, issuedAt, err := guard.Unseal(token)

Tokens are XChaCha20-Poly1305 ciphertexts under a key derived from the
secret with HKDF-SHA256. Every Seal uses a fresh random nonce, so two tokens
for the same identity are unlinkable. Unseal fails closed: any tampered,
truncated, expired, or foreign token returns models.ErrInvalidToken.

# Key Rotation

	guard, err := auth.NewGuard(newSecret, auth.WithPreviousSecrets(oldSecret))

The primary secret seals; every configured secret opens. Each token carries
a 4-byte key id, matched in constant time.

# IP Hashing

For privacy-preserving fraud detection:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
