// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"testing"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
	"github.com/danielhkuo/ballot-box/store/memstore"
)

// tallyFixture builds an election with a President race (Ada, Grace) and a
// Treasurer race (Linus), registers voters, and casts the given votes.
func tallyFixture(t *testing.T, s store.Store, votes map[string][]string) string {
	t.Helper()
	ctx := context.Background()

	electionID := newOpenElection(t, s)
	names := map[string]string{}
	for _, c := range []struct{ name, position string }{
		{"Ada", "President"},
		{"Grace", "President"},
		{"Linus", "Treasurer"},
	} {
		created, err := s.CreateCandidate(ctx, models.Candidate{ElectionID: electionID, Name: c.name, Position: c.position})
		if err != nil {
			t.Fatalf("CreateCandidate() error = %v", err)
		}
		names[c.name] = created.ID
	}

	for fingerprint, choices := range votes {
		voter, err := s.CreateVoter(ctx, models.Voter{ElectionID: electionID, Fingerprint: fingerprint})
		if err != nil {
			t.Fatalf("CreateVoter() error = %v", err)
		}
		for _, name := range choices {
			if _, err := s.CreateVote(ctx, models.Vote{VoterID: voter.ID, CandidateID: names[name]}); err != nil {
				t.Fatalf("CreateVote(%s) error = %v", name, err)
			}
		}
	}
	return electionID
}

func TestTally(t *testing.T) {
	s := memstore.New()
	defer s.Close()
	electionID := tallyFixture(t, s, map[string][]string{
		"fp-1": {"Ada", "Linus"},
		"fp-2": {"Ada"},
		"fp-3": {"Grace"},
	})

	results, err := NewResults(s).Tally(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}

	if results.TotalVotes != 4 {
		t.Errorf("Tally() total = %d, want 4", results.TotalVotes)
	}
	if len(results.Positions) != 2 {
		t.Fatalf("Tally() positions = %d, want 2", len(results.Positions))
	}

	president := results.Positions[0]
	if president.Position != "President" || president.TotalVotes != 3 {
		t.Errorf("president group = %+v", president)
	}
	if president.Leader == nil || president.Leader.Name != "Ada" || president.Leader.Votes != 2 {
		t.Errorf("president leader = %+v, want Ada with 2", president.Leader)
	}

	treasurer := results.Positions[1]
	if treasurer.Position != "Treasurer" || treasurer.TotalVotes != 1 {
		t.Errorf("treasurer group = %+v", treasurer)
	}
	if treasurer.Leader == nil || treasurer.Leader.Name != "Linus" {
		t.Errorf("treasurer leader = %+v, want Linus", treasurer.Leader)
	}
}

func TestTallyTieHasNoLeader(t *testing.T) {
	s := memstore.New()
	defer s.Close()
	electionID := tallyFixture(t, s, map[string][]string{
		"fp-1": {"Ada"},
		"fp-2": {"Grace"},
	})

	results, err := NewResults(s).Tally(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}
	if leader := results.Positions[0].Leader; leader != nil {
		t.Errorf("tied race leader = %+v, want nil", leader)
	}
}

func TestTallyZeroVotes(t *testing.T) {
	s := memstore.New()
	defer s.Close()
	electionID := tallyFixture(t, s, nil)

	results, err := NewResults(s).Tally(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Tally() error = %v", err)
	}
	if results.TotalVotes != 0 {
		t.Errorf("Tally() total = %d, want 0", results.TotalVotes)
	}
	for _, p := range results.Positions {
		if p.Leader != nil {
			t.Errorf("position %s leader = %+v, want nil with zero votes", p.Position, p.Leader)
		}
		if p.TotalVotes != 0 {
			t.Errorf("position %s total = %d, want 0", p.Position, p.TotalVotes)
		}
	}
}

func TestTallyUnknownElection(t *testing.T) {
	s := memstore.New()
	defer s.Close()

	if _, err := NewResults(s).Tally(context.Background(), "missing"); err == nil {
		t.Error("Tally(missing) error = nil, want not-found")
	}
}

func TestLeaderOf(t *testing.T) {
	tests := []struct {
		name    string
		tallies []models.CandidateTally
		want    string // leader name, "" for nil
	}{
		{"clear leader", []models.CandidateTally{{Name: "Ada", Votes: 3}, {Name: "Grace", Votes: 1}}, "Ada"},
		{"leader last", []models.CandidateTally{{Name: "Ada", Votes: 1}, {Name: "Grace", Votes: 4}}, "Grace"},
		{"two-way tie", []models.CandidateTally{{Name: "Ada", Votes: 2}, {Name: "Grace", Votes: 2}}, ""},
		{"tie broken late", []models.CandidateTally{{Name: "Ada", Votes: 2}, {Name: "Grace", Votes: 2}, {Name: "Linus", Votes: 3}}, "Linus"},
		{"all zero", []models.CandidateTally{{Name: "Ada"}, {Name: "Grace"}}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leader := leaderOf(tt.tallies)
			switch {
			case tt.want == "" && leader != nil:
				t.Errorf("leaderOf() = %+v, want nil", leader)
			case tt.want != "" && (leader == nil || leader.Name != tt.want):
				t.Errorf("leaderOf() = %+v, want %s", leader, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	s := memstore.New()
	defer s.Close()
	electionID := tallyFixture(t, s, map[string][]string{
		"fp-1": {"Ada", "Linus"},
		"fp-2": {"Grace"},
	})
	// A registered voter who never voted drags turnout below 100%
	if _, err := s.CreateVoter(context.Background(), models.Voter{ElectionID: electionID, Fingerprint: "fp-quiet"}); err != nil {
		t.Fatalf("CreateVoter() error = %v", err)
	}

	summary, err := NewResults(s).Summary(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.Candidates != 3 || summary.Voters != 3 || summary.Votes != 3 {
		t.Errorf("Summary() counts = %d candidates, %d voters, %d votes", summary.Candidates, summary.Voters, summary.Votes)
	}
	if summary.VotesLabel != "3" {
		t.Errorf("Summary() votes label = %q", summary.VotesLabel)
	}
	if summary.Turnout != "66.7%" {
		t.Errorf("Summary() turnout = %q, want 66.7%%", summary.Turnout)
	}
	if summary.LastVoteAt == nil || summary.LastVote == "" {
		t.Errorf("Summary() last vote = %v %q, want both set", summary.LastVoteAt, summary.LastVote)
	}
}

func TestSummaryEmptyElection(t *testing.T) {
	s := memstore.New()
	defer s.Close()
	electionID := newOpenElection(t, s)

	summary, err := NewResults(s).Summary(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Votes != 0 || summary.Turnout != "0%" {
		t.Errorf("Summary() = %+v, want zero votes and 0%% turnout", summary)
	}
	if summary.LastVoteAt != nil || summary.LastVote != "" {
		t.Errorf("Summary() last vote = %v %q, want unset", summary.LastVoteAt, summary.LastVote)
	}
}
