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

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

func decodeVoters(body []byte) ([]models.Voter, error) {
	var rows []models.Voter
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode voter rows: %w", err)
	}
	return rows, nil
}

func oneVoter(body []byte) (models.Voter, error) {
	rows, err := decodeVoters(body)
	if err != nil {
		return models.Voter{}, err
	}
	if len(rows) == 0 {
		return models.Voter{}, store.ErrNotFound
	}
	return rows[0], nil
}

// CreateVoter inserts blind and lets the remote UNIQUE constraint on
// (election_id, fingerprint) arbitrate races; the conflict that comes back
// is the one the registrar reconciles on.
func (s *Store) CreateVoter(ctx context.Context, v models.Voter) (models.Voter, error) {
	if v.Fingerprint == "" {
		return models.Voter{}, store.Invalid("fingerprint is required")
	}
	if _, err := s.GetElection(ctx, v.ElectionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
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

	body, err := s.c.do(ctx, http.MethodPost, "/voter", nil, v)
	if err != nil {
		if store.IsConflict(err) {
			return models.Voter{}, store.Conflict("voter already registered for this election")
		}
		return models.Voter{}, err
	}
	return oneVoter(body)
}

func (s *Store) FindVoter(ctx context.Context, electionID, fingerprint string) (models.Voter, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/voter", url.Values{
		"election_id": {eq(electionID)},
		"fingerprint": {eq(fingerprint)},
	}, nil)
	if err != nil {
		return models.Voter{}, err
	}
	return oneVoter(body)
}

func (s *Store) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/voter", url.Values{"id": {eq(id)}}, nil)
	if err != nil {
		return models.Voter{}, err
	}
	return oneVoter(body)
}

func (s *Store) CountVoters(ctx context.Context, electionID string) (int, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/voter", url.Values{
		"election_id": {eq(electionID)},
		"select":      {"id"},
	}, nil)
	if err != nil {
		return 0, err
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode voter count rows: %w", err)
	}
	return len(rows), nil
}
