// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// Results computes live tallies and dashboard summaries from stored votes.
// Everything is derived on read; no counters are maintained anywhere.
type Results struct {
	store store.Store
}

func NewResults(s store.Store) *Results {
	return &Results{store: s}
}

// Tally groups the election's votes by position: per-candidate counts, a
// total per position, and the leader where one candidate is strictly ahead.
func (r *Results) Tally(ctx context.Context, electionID string) (models.ElectionResults, error) {
	election, err := r.store.GetElection(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, err
	}
	candidates, err := r.store.ListCandidates(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, err
	}
	votes, err := r.store.ListVotes(ctx, electionID)
	if err != nil {
		return models.ElectionResults{}, err
	}

	counts := make(map[string]int, len(candidates))
	for _, v := range votes {
		counts[v.CandidateID]++
	}

	// Candidates arrive ordered by position then name, so a position group
	// ends exactly where the label changes
	positions := []models.PositionResult{}
	for _, c := range candidates {
		if n := len(positions); n == 0 || positions[n-1].Position != c.Position {
			positions = append(positions, models.PositionResult{Position: c.Position})
		}
		p := &positions[len(positions)-1]
		p.Candidates = append(p.Candidates, models.CandidateTally{
			CandidateID: c.ID,
			Name:        c.Name,
			Votes:       counts[c.ID],
		})
		p.TotalVotes += counts[c.ID]
	}
	for i := range positions {
		positions[i].Leader = leaderOf(positions[i].Candidates)
	}

	return models.ElectionResults{
		ElectionID: electionID,
		IsOpen:     election.IsOpen,
		TotalVotes: len(votes),
		Positions:  positions,
	}, nil
}

// leaderOf picks the strictly leading candidate. A tie for first place or a
// zero-vote board has no leader.
func leaderOf(tallies []models.CandidateTally) *models.CandidateTally {
	var best *models.CandidateTally
	tied := false
	for i := range tallies {
		switch {
		case best == nil || tallies[i].Votes > best.Votes:
			best = &tallies[i]
			tied = false
		case tallies[i].Votes == best.Votes:
			tied = true
		}
	}
	if best == nil || tied || best.Votes == 0 {
		return nil
	}
	leader := *best
	return &leader
}

// Summary assembles the admin dashboard's at-a-glance numbers.
func (r *Results) Summary(ctx context.Context, electionID string) (models.ElectionSummary, error) {
	election, err := r.store.GetElection(ctx, electionID)
	if err != nil {
		return models.ElectionSummary{}, err
	}
	candidates, err := r.store.ListCandidates(ctx, electionID)
	if err != nil {
		return models.ElectionSummary{}, err
	}
	voters, err := r.store.CountVoters(ctx, electionID)
	if err != nil {
		return models.ElectionSummary{}, err
	}
	votes, err := r.store.ListVotes(ctx, electionID)
	if err != nil {
		return models.ElectionSummary{}, err
	}

	s := models.ElectionSummary{
		ElectionID: electionID,
		Title:      election.Title,
		IsOpen:     election.IsOpen,
		Candidates: len(candidates),
		Voters:     voters,
		Votes:      len(votes),
		VotesLabel: humanize.Comma(int64(len(votes))),
		Turnout:    turnout(votes, voters),
	}
	if len(votes) > 0 {
		last := votes[len(votes)-1].CreatedAt
		s.LastVoteAt = &last
		s.LastVote = humanize.Time(last)
	}
	return s, nil
}

// turnout is the share of registered voters who cast at least one vote. The
// raw vote count cannot stand in for it because one voter fills several
// positions.
func turnout(votes []models.Vote, voters int) string {
	if voters == 0 {
		return "0%"
	}
	voted := make(map[string]struct{})
	for _, v := range votes {
		voted[v.VoterID] = struct{}{}
	}
	return fmt.Sprintf("%.1f%%", float64(len(voted))/float64(voters)*100)
}
