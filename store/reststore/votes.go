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
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// voteRow is the wire shape of a vote. models.Vote hides voter_id from API
// responses; the remote store needs it spelled out because it is half of
// the uniqueness key.
type voteRow struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	VoterID     string    `json:"voter_id"`
	CandidateID string    `json:"candidate_id"`
	Position    string    `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r voteRow) toVote() models.Vote {
	return models.Vote{
		ID:          r.ID,
		ElectionID:  r.ElectionID,
		VoterID:     r.VoterID,
		CandidateID: r.CandidateID,
		Position:    r.Position,
		CreatedAt:   r.CreatedAt,
	}
}

func fromVote(v models.Vote) voteRow {
	return voteRow{
		ID:          v.ID,
		ElectionID:  v.ElectionID,
		VoterID:     v.VoterID,
		CandidateID: v.CandidateID,
		Position:    v.Position,
		CreatedAt:   v.CreatedAt,
	}
}

func decodeVotes(body []byte) ([]models.Vote, error) {
	var rows []voteRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode vote rows: %w", err)
	}
	votes := make([]models.Vote, 0, len(rows))
	for _, r := range rows {
		votes = append(votes, r.toVote())
	}
	return votes, nil
}

// CreateVote resolves the candidate and voter, applies the openness policy,
// and inserts. Duplicate (voter, position) pairs are rejected by the remote
// UNIQUE constraint, never by a pre-read, so concurrent submissions from one
// voter cannot both slip through.
func (s *Store) CreateVote(ctx context.Context, v models.Vote) (models.Vote, error) {
	voter, err := s.GetVoter(ctx, v.VoterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Vote{}, store.Invalid("unknown voter")
		}
		return models.Vote{}, err
	}
	candidate, err := s.GetCandidate(ctx, v.CandidateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Vote{}, store.Invalid("unknown candidate")
		}
		return models.Vote{}, err
	}
	if candidate.ElectionID != voter.ElectionID {
		return models.Vote{}, store.Invalid("candidate and voter belong to different elections")
	}

	election, err := s.GetElection(ctx, voter.ElectionID)
	if err != nil {
		return models.Vote{}, err
	}
	if !election.IsOpen {
		return models.Vote{}, store.Invalid("voting session is closed")
	}

	v.ElectionID = voter.ElectionID
	v.Position = candidate.Position
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now()
	}

	body, err := s.c.do(ctx, http.MethodPost, "/vote", nil, fromVote(v))
	if err != nil {
		if store.IsConflict(err) {
			return models.Vote{}, store.Conflict("vote already recorded for this position")
		}
		return models.Vote{}, err
	}

	votes, err := decodeVotes(body)
	if err != nil {
		return models.Vote{}, err
	}
	if len(votes) == 0 {
		return models.Vote{}, store.ErrNotFound
	}
	return votes[0], nil
}

func (s *Store) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	body, err := s.c.do(ctx, http.MethodGet, "/vote", url.Values{
		"election_id": {eq(electionID)},
		"order":       {"created_at.asc,id.asc"},
	}, nil)
	if err != nil {
		return nil, err
	}
	return decodeVotes(body)
}
