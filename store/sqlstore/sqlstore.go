// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/danielhkuo/ballot-box/store"
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is the SQL backend over PostgreSQL (lib/pq) or SQLite (modernc).
// UNIQUE constraints enforce voter and vote uniqueness; the Go layer only
// translates constraint violations into the conflict error.
type Store struct {
	db     *sql.DB
	driver string
	poller *store.VotePoller
}

var _ store.Store = (*Store)(nil)

// Open connects, verifies the connection, and creates the schema. The
// driver is "postgres" or "sqlite".
func Open(driver, dsn string) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if driver == DriverSQLite {
		// modernc's sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY and keeps ":memory:" databases on one handle
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	s, err := New(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection (used by tests) and creates the schema.
func New(db *sql.DB, driver string) (*Store, error) {
	s := &Store{db: db, driver: driver}
	if err := s.createSchema(); err != nil {
		return nil, err
	}
	s.poller = store.NewVotePoller(s.ListVotes, 0)
	return s, nil
}

// DB exposes the underlying connection for test fixtures.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close stops vote subscriptions and closes the connection pool.
func (s *Store) Close() error {
	if s.poller != nil {
		s.poller.Close()
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders to the $N form PostgreSQL expects. Queries
// are written with ? so the same text runs on both dialects.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation detects a UNIQUE constraint rejection from either
// driver: pq reports SQLSTATE 23505, modernc's sqlite spells it out in the
// message.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func now() time.Time {
	// PostgreSQL stores microseconds; truncating up front keeps values
	// comparable before and after a round-trip
	return time.Now().UTC().Truncate(time.Microsecond)
}

// createSchema creates all tables. Safe to call multiple times.
func (s *Store) createSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    is_open BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    position TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);

-- Voters: one row per (election, fingerprint)
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    fingerprint TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (election_id, fingerprint)
);

CREATE INDEX IF NOT EXISTS idx_voter_election_id ON voter(election_id);

-- Votes: one row per (voter, position)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
    position TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (voter_id, position)
);

CREATE INDEX IF NOT EXISTS idx_vote_election_id ON vote(election_id);
`
