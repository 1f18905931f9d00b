// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

func decodeCandidates(body []byte) ([]models.Candidate, error) {
	var rows []models.Candidate
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode candidate rows: %w", err)
	}
	return rows, nil
}

func oneCandidate(body []byte) (models.Candidate, error) {
	rows, err := decodeCandidates(body)
	if err != nil {
		return models.Candidate{}, err
	}
	if len(rows) == 0 {
		return models.Candidate{}, store.ErrNotFound
	}
	return rows[0], nil
}

func (s *Store) CreateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	if _, err := s.GetElection(ctx, c.ElectionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
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

	body, err := s.c.do(ctx, http.MethodPost, "/candidate", nil, c)
	if err != nil {
		return models.Candidate{}, err
	}
	return oneCandidate(body)
}

func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/candidate", url.Values{"id": {eq(id)}}, nil)
	if err != nil {
		return models.Candidate{}, err
	}
	return oneCandidate(body)
}

// ListCandidates sorts locally: the listing order is case-insensitive by
// position then name, and the remote order parameter follows server
// collation instead.
func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/candidate",
		url.Values{"election_id": {eq(electionID)}}, nil)
	if err != nil {
		return nil, err
	}
	candidates, err := decodeCandidates(body)
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		pi, pj := strings.ToLower(candidates[i].Position), strings.ToLower(candidates[j].Position)
		if pi != pj {
			return pi < pj
		}
		return strings.ToLower(candidates[i].Name) < strings.ToLower(candidates[j].Name)
	})
	return candidates, nil
}

func (s *Store) UpdateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	patch := map[string]any{
		"name":        c.Name,
		"position":    c.Position,
		"description": c.Description,
		"image_url":   c.ImageURL,
	}
	body, err := s.c.do(ctx, http.MethodPatch, "/candidate", url.Values{"id": {eq(c.ID)}}, patch)
	if err != nil {
		return models.Candidate{}, err
	}
	return oneCandidate(body)
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

	if _, err := s.c.do(ctx, http.MethodDelete, "/vote",
		url.Values{"candidate_id": {eq(id)}}, nil); err != nil {
		return fmt.Errorf("cascade delete votes: %w", err)
	}

	body, err := s.c.do(ctx, http.MethodDelete, "/candidate", url.Values{"id": {eq(id)}}, nil)
	if err != nil {
		return err
	}
	rows, err := decodeCandidates(body)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}
