// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sqlstore provides the SQL store backend.

It runs on PostgreSQL via github.com/lib/pq or on SQLite via
modernc.org/sqlite; the driver name passed to Open selects the dialect.
Queries are written once with ? placeholders and rebound to $N for
PostgreSQL.

The schema is created on Open with IF NOT EXISTS tables. The two voting
invariants live in UNIQUE constraints, not in Go:

	voter: UNIQUE (election_id, fingerprint)
	vote:  UNIQUE (voter_id, position)

Inserts go in blind and a constraint rejection is translated to the
ALREADY_VOTED conflict error, so concurrent duplicate attempts resolve the
same way they would against the hosted backend. Election deletion cascades
to candidates, voters, and votes inside a transaction with explicit child
deletes, keeping the behavior identical whether or not the engine enforces
foreign keys.

Vote subscriptions poll the vote table through store.VotePoller; SQLite has
no push channel and LISTEN/NOTIFY would tie the feature to one dialect.

SQLite is intended for single-binary deployments and tests (":memory:"
databases get a single-connection pool so they stay on one handle);
PostgreSQL is the production target.
*/
package sqlstore
