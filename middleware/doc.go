// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Response Envelope

Every endpoint answers with the same envelope. Success wraps the payload,
Fail and FailErr build the failure side with the HTTP status derived from
the error code:

	middleware.Success(w, http.StatusCreated, election)
	middleware.Fail(w, models.CodeInvalidData, "title is required")
	middleware.FailErr(w, err) // store/auth errors carry their own code

The code to status mapping is fixed: ALREADY_VOTED is 409, INVALID_DATA is
422, RATE_LIMIT is 429, NOT_FOUND is 404, UNAUTHORIZED is 401,
NETWORK_ERROR is 502, and everything else is 500.

# Admin Sessions

Guard admin handlers behind a bearer session:

	mux.HandleFunc("DELETE /elections/{id}",
		middleware.WithLogging(middleware.RequireSession(sessions, h.DeleteElection)))

RequireSession resolves the Authorization bearer token through
auth.Service.Get and stores the session on the request context, where
handlers can read it back with middleware.SessionFrom.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PATCH, DELETE, OPTIONS with headers
Content-Type, Authorization.

# JSON Helpers

Parse JSON request bodies:

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Fail(w, models.CodeInvalidData, "invalid JSON body")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used to scope the sign-in rate limiter.
*/
package middleware
