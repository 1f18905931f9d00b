// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballot box API server.

Ballot box is the backend of a browser voting application for small
elections: admins manage elections and candidates, voters are identified by
a device fingerprint instead of accounts, and each voter gets one vote per
position.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	ADMIN_EMAIL=... ADMIN_PASSWORD=... SESSION_SECRET=... go run main.go

Or with flags:

	go run main.go -p 3001 -s sqlite -d "file:ballot.db"

# Configuration

Required settings:

  - ADMIN_EMAIL (-admin-email): Admin sign-in email
  - ADMIN_PASSWORD (-admin-password): Admin sign-in password
  - SESSION_SECRET (-session-secret): HMAC secret for session tokens, 32+ bytes

Optional settings:

  - PORT (-p): Server port (default: 3001)
  - STORE_BACKEND (-s): memory, sqlite, postgres, or rest; derived from the
    other settings when omitted
  - DATABASE_URL (-d): SQL connection string for sqlite/postgres backends
  - BAAS_URL (-baas-url), BAAS_API_KEY (-baas-key): REST backend endpoint
  - FINGERPRINT_FALLBACK (-fp-fallback): use the legacy rolling hash

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (sessions, elections, candidates, voters, votes, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, envelope and session helpers
  - models: Request/response types and error codes
  - auth: Admin sessions with JWT tokens and sign-in throttling
  - fingerprint: Browser signal normalization and hashing
  - voting: Registrar, submitter, and results tallying
  - store: Storage interface with memory, SQL, and REST backends
  - realtime: Server-sent events for live results
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
