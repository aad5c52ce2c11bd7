// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status and duration_ms once the handler returns.
5xx responses are logged at error level.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST and OPTIONS with headers Content-Type and X-User-ID.
Credentials are allowed so the session cookie travels cross-origin.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorKindResponse(w, http.StatusConflict, "AlreadyVoted", "already voted")

ParseJSONBody rejects unknown fields and bodies over 64 KiB.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used for the salted IP hash stored with each vote.
*/
package middleware
