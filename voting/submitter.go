// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// Submitter records votes. It never pre-checks for an existing vote: the
// store's uniqueness constraint is the single source of truth, so two tabs
// racing the same submission can never both slip through a check-then-act
// window. The duplicate's conflict is a normal outcome for callers to
// present, not a failure to log.
type Submitter struct {
	store store.Store
}

func NewSubmitter(s store.Store) *Submitter {
	return &Submitter{store: s}
}

// SubmitVote casts the voter's vote for one candidate. The store resolves
// both rows, derives the election and position, and enforces its policies:
// one vote per (voter, position), writes only while the session is open.
func (s *Submitter) SubmitVote(ctx context.Context, voterID, candidateID string) (models.Vote, error) {
	return s.store.CreateVote(ctx, models.Vote{
		VoterID:     voterID,
		CandidateID: candidateID,
	})
}
