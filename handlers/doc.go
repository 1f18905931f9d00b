// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballot box API.

# Handler Types

Each handler is a struct with its dependencies injected by constructor:

  - SessionHandler: Admin sign-in, session check, sign-out
  - ElectionHandler: Election lifecycle (create, update, open/close, delete)
  - CandidateHandler: Candidate management per election
  - VoterHandler: Fingerprint-based voter registration
  - VoteHandler: Vote submission and the live SSE feed
  - ResultsHandler: Tally, dashboard summary, CSV export

Handlers speak the shared response envelope through the middleware
package; store and auth errors map to HTTP statuses in exactly one place
(middleware.FailErr).

# Voting Flow

The voting page drives three endpoints, no account required:

	GET  /elections/current        → ElectionHandler.GetCurrent
	POST /elections/{id}/voters    → VoterHandler.Register
	POST /elections/{id}/votes     → VoteHandler.Submit

Registration turns raw browser signals into a fingerprint server-side and
is idempotent per device. Submission never pre-checks: the store's
uniqueness rules decide, and a duplicate comes back as ALREADY_VOTED.

# Election Lifecycle

Elections toggle between closed and open voting sessions:

	POST /elections             → Create
	POST /elections/{id}/open   → Open
	POST /elections/{id}/close  → Close
	DELETE /elections/{id}      → Delete (cascades)

Admin operations sit behind middleware.RequireSession.

# Live Results

GET /elections/{id}/votes/stream is a server-sent events feed with one
"vote" event per insert, backed by store.SubscribeVotes. Results and
summary endpoints recompute from the vote table on every call.
*/
package handlers
