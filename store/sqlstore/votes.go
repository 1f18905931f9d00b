// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// CreateVote resolves the candidate and voter, applies the store's openness
// policy, and inserts. Duplicate (voter, position) pairs are rejected by the
// UNIQUE constraint, never by a pre-read, so concurrent submissions from one
// voter cannot both slip through.
func (s *Store) CreateVote(ctx context.Context, v models.Vote) (models.Vote, error) {
	voter, err := s.GetVoter(ctx, v.VoterID)
	if err != nil {
		if err == store.ErrNotFound {
			return models.Vote{}, store.Invalid("unknown voter")
		}
		return models.Vote{}, err
	}
	candidate, err := s.GetCandidate(ctx, v.CandidateID)
	if err != nil {
		if err == store.ErrNotFound {
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

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO vote (id, election_id, voter_id, candidate_id, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), v.ID, v.ElectionID, v.VoterID, v.CandidateID, v.Position, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Vote{}, store.Conflict("vote already recorded for this position")
		}
		return models.Vote{}, fmt.Errorf("insert vote: %w", err)
	}
	return v, nil
}

func (s *Store) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, election_id, voter_id, candidate_id, position, created_at
		FROM vote
		WHERE election_id = ?
		ORDER BY created_at ASC, id ASC
	`), electionID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.ElectionID, &v.VoterID, &v.CandidateID, &v.Position, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// SubscribeVotes polls the vote table; SQL engines give us no push channel
// that works across both dialects.
func (s *Store) SubscribeVotes(electionID string, fn func(models.Vote)) func() {
	return s.poller.Subscribe(electionID, fn)
}
