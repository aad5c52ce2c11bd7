// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/accent-vote/auth"
	"github.com/danielhkuo/accent-vote/cliparse"
	"github.com/danielhkuo/accent-vote/identity"
	"github.com/danielhkuo/accent-vote/middleware"
	"github.com/danielhkuo/accent-vote/models"
)

const (
	// SessionCookie holds the sealed anonymous identity
	SessionCookie = "av_session"

	// UserIDHeader carries the id of an authenticated user, set by the
	// gateway in front of this service
	UserIDHeader = "X-User-ID"
)

type IdentityHandler struct {
	guard *auth.Guard
	cfg   cliparse.Config
}

func NewIdentityHandler(guard *auth.Guard, cfg cliparse.Config) *IdentityHandler {
	return &IdentityHandler{guard: guard, cfg: cfg}
}

// Establish handles POST /identity
// Derives the caller's identity from a fingerprint and stores it sealed in
// the session cookie. The identity itself is never returned.
func (h *IdentityHandler) Establish(w http.ResponseWriter, r *http.Request) {
	var req models.IdentityRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorKindResponse(w, http.StatusBadRequest, kindInvalidRequest, "Invalid JSON")
		return
	}

	id, err := identity.Derive(identity.FromRequest(req.Fingerprint))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := setSession(w, r, h.guard, h.cfg, id); err != nil {
		slog.Error("failed to seal session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to establish identity")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.IdentityResponse{IdentitySet: true})
}

// requestIdentity picks the caller's identity: an authenticated user id
// first, then the session cookie, then the fingerprint in the body.
// A tampered or expired cookie is ignored in favour of the fingerprint. When
// the body carries none, a fresh identity is minted from the request headers
// instead; only a request without a User-Agent fails with the cookie error.
func requestIdentity(r *http.Request, guard *auth.Guard, fp *models.FingerprintRequest) (identity.Identity, error) {
	if userID := r.Header.Get(UserIDHeader); userID != "" {
		return identity.FromUser(userID)
	}

	var cookieErr error
	if c, err := r.Cookie(SessionCookie); err == nil {
		id, _, err := guard.Unseal(c.Value)
		if err == nil {
			return id, nil
		}
		slog.Warn("ignoring invalid session cookie", "error", err)
		cookieErr = err
	}

	if fp != nil {
		return identity.Derive(identity.FromRequest(*fp))
	}
	if cookieErr == nil {
		return "", fmt.Errorf("no session or fingerprint: %w", models.ErrInvalidFingerprint)
	}

	id, err := identity.Derive(headerFingerprint(r))
	if err != nil {
		return "", cookieErr
	}
	return id, nil
}

// headerFingerprint is the fingerprint a request carries in its headers
func headerFingerprint(r *http.Request) identity.Fingerprint {
	return identity.Fingerprint{
		UserAgent: r.UserAgent(),
		Language:  r.Header.Get("Accept-Language"),
	}
}

// setSession (re)issues the session cookie for id. Authenticated users
// are identified by the header on every request and get no cookie.
func setSession(w http.ResponseWriter, r *http.Request, guard *auth.Guard, cfg cliparse.Config, id identity.Identity) error {
	if id.IsUser() {
		return nil
	}
	token, err := guard.Seal(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// isInvalidToken reports whether err came from a rejected session cookie
func isInvalidToken(err error) bool {
	return errors.Is(err, models.ErrInvalidToken)
}

// clearSession tells the browser to drop a session cookie we can no longer
// open, so the next request falls back to the fingerprint.
func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
