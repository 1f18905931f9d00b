// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"

	"github.com/danielhkuo/ballot-box/models"
)

// Store is the persistence boundary for elections, candidates, voters, and
// votes. Implementations enforce the two uniqueness rules: at most one voter
// per (election, fingerprint) and at most one vote per (voter, position).
// Callers never pre-check either rule; they write and treat the resulting
// conflict as an expected outcome.
//
// Create methods assign id and created_at when unset and return the stored
// row. Uniqueness violations surface as *Error with code ALREADY_VOTED;
// lookups that match nothing return ErrNotFound.
type Store interface {
	// Elections

	CreateElection(ctx context.Context, e models.Election) (models.Election, error)
	GetElection(ctx context.Context, id string) (models.Election, error)
	// ListElections returns all elections, newest first.
	ListElections(ctx context.Context) ([]models.Election, error)
	// CurrentElection returns the most recently created election.
	CurrentElection(ctx context.Context) (models.Election, error)
	UpdateElection(ctx context.Context, e models.Election) (models.Election, error)
	// SetElectionOpen flips the voting session flag.
	SetElectionOpen(ctx context.Context, id string, open bool) (models.Election, error)
	// DeleteElection removes the election and cascades to its candidates,
	// voters, and votes.
	DeleteElection(ctx context.Context, id string) error

	// Candidates

	CreateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (models.Candidate, error)
	// ListCandidates returns the election's candidates ordered by position,
	// then name.
	ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error)
	UpdateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error

	// Voters

	CreateVoter(ctx context.Context, v models.Voter) (models.Voter, error)
	// FindVoter looks up a voter by fingerprint within one election.
	FindVoter(ctx context.Context, electionID, fingerprint string) (models.Voter, error)
	GetVoter(ctx context.Context, id string) (models.Voter, error)
	CountVoters(ctx context.Context, electionID string) (int, error)

	// Votes

	CreateVote(ctx context.Context, v models.Vote) (models.Vote, error)
	// ListVotes returns the election's votes ordered by creation time,
	// oldest first.
	ListVotes(ctx context.Context, electionID string) ([]models.Vote, error)

	// SubscribeVotes registers fn to run for every vote inserted into the
	// election after the call. Delivery is asynchronous and best-effort.
	// The returned release stops delivery and must be called when the
	// subscriber is done; calling it more than once is safe.
	SubscribeVotes(electionID string, fn func(models.Vote)) (release func())

	Close() error
}
