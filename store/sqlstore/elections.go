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

func (s *Store) CreateElection(ctx context.Context, e models.Election) (models.Election, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO election (id, title, description, is_open, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), e.ID, e.Title, e.Description, e.IsOpen, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Election{}, store.Conflict("election id already exists")
		}
		return models.Election{}, fmt.Errorf("insert election: %w", err)
	}
	return e, nil
}

func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	var e models.Election
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, title, description, is_open, created_at
		FROM election WHERE id = ?
	`), id).Scan(&e.ID, &e.Title, &e.Description, &e.IsOpen, &e.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Election{}, store.ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("query election: %w", err)
	}
	return e, nil
}

func (s *Store) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, is_open, created_at
		FROM election
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.IsOpen, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan election: %w", err)
		}
		elections = append(elections, e)
	}
	return elections, rows.Err()
}

func (s *Store) CurrentElection(ctx context.Context) (models.Election, error) {
	var e models.Election
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, is_open, created_at
		FROM election
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&e.ID, &e.Title, &e.Description, &e.IsOpen, &e.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Election{}, store.ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("query current election: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateElection(ctx context.Context, e models.Election) (models.Election, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE election SET title = ?, description = ?, is_open = ? WHERE id = ?
	`), e.Title, e.Description, e.IsOpen, e.ID)
	if err != nil {
		return models.Election{}, fmt.Errorf("update election: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.Election{}, store.ErrNotFound
	}
	return s.GetElection(ctx, e.ID)
}

func (s *Store) SetElectionOpen(ctx context.Context, id string, open bool) (models.Election, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE election SET is_open = ? WHERE id = ?
	`), open, id)
	if err != nil {
		return models.Election{}, fmt.Errorf("update election session: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.Election{}, store.ErrNotFound
	}
	return s.GetElection(ctx, id)
}

// DeleteElection removes the election and everything under it. The child
// deletes are explicit so the cascade works the same whether or not the
// engine enforces the foreign keys.
func (s *Store) DeleteElection(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete election: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"vote", "voter", "candidate"} {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+table+` WHERE election_id = ?`), id); err != nil {
			return fmt.Errorf("cascade delete %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM election WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete election: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}
