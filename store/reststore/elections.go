// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reststore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

func decodeElections(body []byte) ([]models.Election, error) {
	var rows []models.Election
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode election rows: %w", err)
	}
	return rows, nil
}

// oneElection decodes a response that should hold exactly one row. The
// interface answers every request with an array; an empty one is the
// not-found case.
func oneElection(body []byte) (models.Election, error) {
	rows, err := decodeElections(body)
	if err != nil {
		return models.Election{}, err
	}
	if len(rows) == 0 {
		return models.Election{}, store.ErrNotFound
	}
	return rows[0], nil
}

func (s *Store) CreateElection(ctx context.Context, e models.Election) (models.Election, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}

	body, err := s.c.do(ctx, http.MethodPost, "/election", nil, e)
	if err != nil {
		if store.IsConflict(err) {
			return models.Election{}, store.Conflict("election id already exists")
		}
		return models.Election{}, err
	}
	return oneElection(body)
}

func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/election", url.Values{"id": {eq(id)}}, nil)
	if err != nil {
		return models.Election{}, err
	}
	return oneElection(body)
}

func (s *Store) ListElections(ctx context.Context) ([]models.Election, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/election",
		url.Values{"order": {"created_at.desc,id.desc"}}, nil)
	if err != nil {
		return nil, err
	}
	return decodeElections(body)
}

func (s *Store) CurrentElection(ctx context.Context) (models.Election, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/election",
		url.Values{"order": {"created_at.desc,id.desc"}, "limit": {"1"}}, nil)
	if err != nil {
		return models.Election{}, err
	}
	return oneElection(body)
}

func (s *Store) UpdateElection(ctx context.Context, e models.Election) (models.Election, error) {
	patch := map[string]any{
		"title":       e.Title,
		"description": e.Description,
		"is_open":     e.IsOpen,
	}
	body, err := s.c.do(ctx, http.MethodPatch, "/election", url.Values{"id": {eq(e.ID)}}, patch)
	if err != nil {
		return models.Election{}, err
	}
	return oneElection(body)
}

func (s *Store) SetElectionOpen(ctx context.Context, id string, open bool) (models.Election, error) {
	body, err := s.c.do(ctx, http.MethodPatch, "/election", url.Values{"id": {eq(id)}},
		map[string]any{"is_open": open})
	if err != nil {
		return models.Election{}, err
	}
	return oneElection(body)
}

// DeleteElection removes the election and everything under it. The child
// deletes are explicit because the client cannot assume the remote schema
// cascades, and there is no transaction to lean on; a failure partway
// through leaves orphans that the next delete sweeps up.
func (s *Store) DeleteElection(ctx context.Context, id string) error {
	for _, collection := range []string{"vote", "voter", "candidate"} {
		if _, err := s.c.do(ctx, http.MethodDelete, "/"+collection,
			url.Values{"election_id": {eq(id)}}, nil); err != nil {
			return fmt.Errorf("cascade delete %s: %w", collection, err)
		}
	}

	body, err := s.c.do(ctx, http.MethodDelete, "/election", url.Values{"id": {eq(id)}}, nil)
	if err != nil {
		return err
	}
	rows, err := decodeElections(body)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}
