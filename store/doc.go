// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the persistence boundary and its error taxonomy.

# Contract

Store is implemented by three backends:

  - memstore: in-memory maps, zero-config default, also the test double
  - sqlstore: database/sql over SQLite or PostgreSQL
  - reststore: the hosted backend's REST interface with retry

The store is the single source of truth for uniqueness. Voter rows are
unique per (election_id, fingerprint) and vote rows per (voter_id,
position); callers write blind and handle the conflict error instead of
pre-checking, which would just reintroduce the check-then-act race the
constraint exists to close.

# Errors

Typed failures are *Error values carrying a models.Code* value:

	ALREADY_VOTED  uniqueness violation (conflict)
	INVALID_DATA   validation rejection, including votes against a closed
	               session
	RATE_LIMIT     backend throttling
	SERVER_ERROR   backend 5xx or internal failure
	NETWORK_ERROR  transport failure after retries
	UNKNOWN_ERROR  anything else non-2xx from the backend

ErrNotFound is a separate sentinel for the empty-result case; layers that
expect absence (the voter registrar's first read) handle it locally.

# Subscriptions

SubscribeVotes delivers vote insertions to a callback until released.
VotePoller provides the polling implementation shared by the SQL and REST
backends; memstore pushes directly.
*/
package store
