// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/danielhkuo/accent-vote/identity"
	"github.com/danielhkuo/accent-vote/models"
)

const (
	tokenVersion byte = 1
	keyIDLen          = 4
	headerLen         = 1 + keyIDLen
	issuedAtLen       = 8
)

var hkdfInfo = []byte("accent-vote session cookie v1")

var ErrEmptySecret = errors.New("cookie secret must not be empty")

type sealKey struct {
	id   []byte
	aead cipher.AEAD
}

// Guard seals identities into opaque cookie tokens and opens them again.
//
// Token layout (base64url, no padding):
//
//	version(1) | key id(4) | nonce(24) | XChaCha20-Poly1305(issued_at(8) | identity)
//
// The version and key id are authenticated as associated data.
type Guard struct {
	keys   []sealKey // keys[0] seals; all keys open
	maxAge time.Duration
	now    func() time.Time
	random io.Reader
}

type GuardOption func(*Guard) error

// WithPreviousSecrets lets the guard open tokens sealed under rotated-out secrets
func WithPreviousSecrets(secrets ...string) GuardOption {
	return func(g *Guard) error {
		for _, s := range secrets {
			if s == "" {
				continue
			}
			k, err := newSealKey(s)
			if err != nil {
				return err
			}
			g.keys = append(g.keys, k)
		}
		return nil
	}
}

// WithMaxAge rejects tokens issued more than d ago. Zero disables the check.
func WithMaxAge(d time.Duration) GuardOption {
	return func(g *Guard) error {
		g.maxAge = d
		return nil
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) error {
		g.now = now
		return nil
	}
}

// NewGuard creates a guard whose sealing key is derived from secret
func NewGuard(secret string, opts ...GuardOption) (*Guard, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	primary, err := newSealKey(secret)
	if err != nil {
		return nil, err
	}

	g := &Guard{
		keys:   []sealKey{primary},
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func newSealKey(secret string) (sealKey, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo), key); err != nil {
		return sealKey{}, fmt.Errorf("failed to derive cookie key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return sealKey{}, fmt.Errorf("failed to create cipher: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("key-id"))

	return sealKey{id: mac.Sum(nil)[:keyIDLen], aead: aead}, nil
}

// Seal encrypts the identity together with the current time. A fresh random
// nonce is used per call, so sealing the same identity twice yields
// different tokens.
func (g *Guard) Seal(id identity.Identity) (string, error) {
	if id == "" {
		return "", errors.New("cannot seal empty identity")
	}
	k := g.keys[0]

	header := make([]byte, headerLen)
	header[0] = tokenVersion
	copy(header[1:], k.id)

	nonce := make([]byte, k.aead.NonceSize())
	if _, err := io.ReadFull(g.random, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	plaintext := make([]byte, issuedAtLen, issuedAtLen+len(id))
	binary.BigEndian.PutUint64(plaintext, uint64(g.now().Unix()))
	plaintext = append(plaintext, id...)

	out := make([]byte, 0, headerLen+len(nonce)+len(plaintext)+k.aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	out = k.aead.Seal(out, nonce, plaintext, header)

	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Unseal decrypts a token. Every failure, expiry included, is reported as
// models.ErrInvalidToken with no identity.
func (g *Guard) Unseal(token string) (identity.Identity, time.Time, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("decode: %w", models.ErrInvalidToken)
	}
	if len(raw) < headerLen || raw[0] != tokenVersion {
		return "", time.Time{}, fmt.Errorf("bad header: %w", models.ErrInvalidToken)
	}

	header, body := raw[:headerLen], raw[headerLen:]
	k, ok := g.keyFor(header[1:])
	if !ok {
		return "", time.Time{}, fmt.Errorf("unknown key: %w", models.ErrInvalidToken)
	}

	ns := k.aead.NonceSize()
	if len(body) < ns+k.aead.Overhead() {
		return "", time.Time{}, fmt.Errorf("truncated: %w", models.ErrInvalidToken)
	}
	plaintext, err := k.aead.Open(nil, body[:ns], body[ns:], header)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("open: %w", models.ErrInvalidToken)
	}
	if len(plaintext) <= issuedAtLen {
		return "", time.Time{}, fmt.Errorf("empty identity: %w", models.ErrInvalidToken)
	}

	issuedAt := time.Unix(int64(binary.BigEndian.Uint64(plaintext[:issuedAtLen])), 0)
	if g.maxAge > 0 && g.now().Sub(issuedAt) > g.maxAge {
		return "", time.Time{}, fmt.Errorf("expired: %w", models.ErrInvalidToken)
	}

	return identity.Identity(plaintext[issuedAtLen:]), issuedAt, nil
}

// keyFor compares every key id in constant time and does not stop early
func (g *Guard) keyFor(id []byte) (sealKey, bool) {
	var found sealKey
	ok := false
	for _, k := range g.keys {
		if subtle.ConstantTimeCompare(k.id, id) == 1 && !ok {
			found = k
			ok = true
		}
	}
	return found, ok
}
