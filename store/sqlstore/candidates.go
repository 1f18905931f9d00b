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

func (s *Store) CreateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	if _, err := s.GetElection(ctx, c.ElectionID); err != nil {
		if err == store.ErrNotFound {
			return models.Candidate{}, store.Invalid("unknown election")
		}
		return models.Candidate{}, err
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO candidate (id, election_id, name, position, description, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), c.ID, c.ElectionID, c.Name, c.Position, c.Description, c.ImageURL, c.CreatedAt)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("insert candidate: %w", err)
	}
	return c, nil
}

func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	var c models.Candidate
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, election_id, name, position, description, image_url, created_at
		FROM candidate WHERE id = ?
	`), id).Scan(&c.ID, &c.ElectionID, &c.Name, &c.Position, &c.Description, &c.ImageURL, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Candidate{}, store.ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("query candidate: %w", err)
	}
	return c, nil
}

func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, election_id, name, position, description, image_url, created_at
		FROM candidate
		WHERE election_id = ?
		ORDER BY LOWER(position), LOWER(name)
	`), electionID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Position, &c.Description, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (s *Store) UpdateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE candidate SET name = ?, position = ?, description = ?, image_url = ? WHERE id = ?
	`), c.Name, c.Position, c.Description, c.ImageURL, c.ID)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("update candidate: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.Candidate{}, store.ErrNotFound
	}
	return s.GetCandidate(ctx, c.ID)
}

// DeleteCandidate refuses while the election is open; votes already cast for
// the candidate go with it.
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	c, err := s.GetCandidate(ctx, id)
	if err != nil {
		return err
	}
	e, err := s.GetElection(ctx, c.ElectionID)
	if err == nil && e.IsOpen {
		return store.Invalid("candidates can only be deleted while the voting session is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete candidate: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM vote WHERE candidate_id = ?`), id); err != nil {
		return fmt.Errorf("cascade delete votes: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM candidate WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}
