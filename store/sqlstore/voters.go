// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// CreateVoter inserts blind and lets the UNIQUE (election_id, fingerprint)
// constraint arbitrate races; a violation comes back as the conflict error
// the registrar reconciles on.
func (s *Store) CreateVoter(ctx context.Context, v models.Voter) (models.Voter, error) {
	if v.Fingerprint == "" {
		return models.Voter{}, store.Invalid("fingerprint is required")
	}
	if _, err := s.GetElection(ctx, v.ElectionID); err != nil {
		if err == store.ErrNotFound {
			return models.Voter{}, store.Invalid("unknown election")
		}
		return models.Voter{}, err
	}

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO voter (id, election_id, fingerprint, created_at)
		VALUES (?, ?, ?, ?)
	`), v.ID, v.ElectionID, v.Fingerprint, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Voter{}, store.Conflict("voter already registered for this election")
		}
		return models.Voter{}, fmt.Errorf("insert voter: %w", err)
	}
	return v, nil
}

func (s *Store) FindVoter(ctx context.Context, electionID, fingerprint string) (models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, election_id, fingerprint, created_at
		FROM voter
		WHERE election_id = ? AND fingerprint = ?
	`), electionID, fingerprint).Scan(&v.ID, &v.ElectionID, &v.Fingerprint, &v.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Voter{}, store.ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("query voter: %w", err)
	}
	return v, nil
}

func (s *Store) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, election_id, fingerprint, created_at
		FROM voter WHERE id = ?
	`), id).Scan(&v.ID, &v.ElectionID, &v.Fingerprint, &v.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Voter{}, store.ErrNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("query voter: %w", err)
	}
	return v, nil
}

func (s *Store) CountVoters(ctx context.Context, electionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*) FROM voter WHERE election_id = ?
	`), electionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count voters: %w", err)
	}
	return count, nil
}
