// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballot box API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, sessions, cfg)

# Endpoints

Health:

	GET /health

Admin session:

	POST   /session - Sign in, returns the bearer token
	GET    /session - Check the current session
	DELETE /session - Sign out, revokes the token

Election management (admin, requires Authorization: Bearer):

	POST   /elections                  - Create election
	GET    /elections                  - List elections
	PATCH  /elections/{id}             - Update title/description
	POST   /elections/{id}/open        - Open the voting session
	POST   /elections/{id}/close       - Close the voting session
	DELETE /elections/{id}             - Delete election and dependents
	POST   /elections/{id}/candidates  - Add candidate
	PATCH  /candidates/{id}            - Update candidate
	DELETE /candidates/{id}            - Remove candidate (closed session only)
	GET    /elections/{id}/summary     - Dashboard stats
	GET    /elections/{id}/export      - Votes as CSV

Voting (public):

	GET  /elections/current         - Newest election with its candidates
	GET  /elections/{id}            - Election info
	GET  /elections/{id}/candidates - Ballot listing
	POST /elections/{id}/voters     - Register device as voter
	POST /elections/{id}/votes      - Cast a vote

Results (public):

	GET /elections/{id}/results      - Live tally per position
	GET /elections/{id}/votes/stream - Server-sent vote events

# Handler Initialization

The router creates handler instances with dependency injection:

	sessionHandler := handlers.NewSessionHandler(sessions)
	electionHandler := handlers.NewElectionHandler(st)
	voterHandler := handlers.NewVoterHandler(voting.NewRegistrar(st), hasher)

The fingerprint hasher is selected here from cfg.FingerprintFallback, so a
deployment hashes every device the same way.
*/
package router
