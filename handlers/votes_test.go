package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store/memstore"
	"github.com/danielhkuo/ballot-box/testutil"
	"github.com/danielhkuo/ballot-box/voting"
)

func TestSubmitVote(t *testing.T) {
	st := testutil.NewStore(t)
	handler := NewVoteHandler(st, voting.NewSubmitter(st))
	election := testutil.CreateTestElection(t, st, true)
	candidate := testutil.AddTestCandidate(t, st, election.ID, "Alice Chen", "President")
	voter := testutil.RegisterTestVoter(t, st, election.ID, "fp-submit-test")

	req := testutil.MakeRequest("POST", "/elections/"+election.ID+"/votes", models.SubmitVoteRequest{
		VoterID:     voter.ID,
		CandidateID: candidate.ID,
	}, nil)
	req.SetPathValue("id", election.ID)
	w := httptest.NewRecorder()

	handler.Submit(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	// The ballot is anonymous: the voter's id never appears in the response
	if strings.Contains(w.Body.String(), voter.ID) {
		t.Error("Expected voter id to stay out of the response body")
	}

	var vote models.Vote
	testutil.AssertEnvelope(t, w, &vote)
	if vote.ID == "" {
		t.Error("Expected non-empty vote id")
	}
	if vote.ElectionID != election.ID {
		t.Errorf("Expected vote in election %s, got %s", election.ID, vote.ElectionID)
	}
	if vote.CandidateID != candidate.ID {
		t.Errorf("Expected vote for candidate %s, got %s", candidate.ID, vote.CandidateID)
	}
	// Position is derived from the candidate, never taken from the client
	if vote.Position != "President" {
		t.Errorf("Expected position 'President', got %q", vote.Position)
	}
}

// TestSubmitVoteDuplicatePosition verifies one vote per voter per position:
// the second ballot for the same race is rejected, a ballot for another race
// goes through.
func TestSubmitVoteDuplicatePosition(t *testing.T) {
	st := testutil.NewStore(t)
	handler := NewVoteHandler(st, voting.NewSubmitter(st))
	election := testutil.CreateTestElection(t, st, true)
	alice := testutil.AddTestCandidate(t, st, election.ID, "Alice Chen", "President")
	bob := testutil.AddTestCandidate(t, st, election.ID, "Bob Park", "President")
	carol := testutil.AddTestCandidate(t, st, election.ID, "Carol Diaz", "Treasurer")
	voter := testutil.RegisterTestVoter(t, st, election.ID, "fp-dup-test")

	submit := func(candidateID string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/elections/"+election.ID+"/votes", models.SubmitVoteRequest{
			VoterID:     voter.ID,
			CandidateID: candidateID,
		}, nil)
		req.SetPathValue("id", election.ID)
		w := httptest.NewRecorder()
		handler.Submit(w, req)
		return w
	}

	// First presidential vote lands
	testutil.AssertStatus(t, submit(alice.ID), http.StatusCreated)

	// Voting for the same race again is a conflict, same candidate or not
	testutil.AssertErrorCode(t, submit(alice.ID), http.StatusConflict, models.CodeAlreadyVoted)
	testutil.AssertErrorCode(t, submit(bob.ID), http.StatusConflict, models.CodeAlreadyVoted)

	// A different race is still open to this voter
	testutil.AssertStatus(t, submit(carol.ID), http.StatusCreated)
}

func TestSubmitVoteClosedSession(t *testing.T) {
	st := testutil.NewStore(t)
	handler := NewVoteHandler(st, voting.NewSubmitter(st))
	election := testutil.CreateTestElection(t, st, false)
	candidate := testutil.AddTestCandidate(t, st, election.ID, "Alice Chen", "President")
	voter := testutil.RegisterTestVoter(t, st, election.ID, "fp-closed-test")

	req := testutil.MakeRequest("POST", "/elections/"+election.ID+"/votes", models.SubmitVoteRequest{
		VoterID:     voter.ID,
		CandidateID: candidate.ID,
	}, nil)
	req.SetPathValue("id", election.ID)
	w := httptest.NewRecorder()

	handler.Submit(w, req)

	testutil.AssertErrorCode(t, w, http.StatusUnprocessableEntity, models.CodeInvalidData)
}

func TestSubmitVoteValidation(t *testing.T) {
	st := testutil.NewStore(t)
	handler := NewVoteHandler(st, voting.NewSubmitter(st))
	election := testutil.CreateTestElection(t, st, true)
	candidate := testutil.AddTestCandidate(t, st, election.ID, "Alice Chen", "President")
	voter := testutil.RegisterTestVoter(t, st, election.ID, "fp-validation-test")

	// A second election to exercise the cross-election guard
	otherElection := testutil.CreateTestElection(t, st, true)
	otherVoter := testutil.RegisterTestVoter(t, st, otherElection.ID, "fp-other-election")

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "missing voter_id",
			requestBody:    models.SubmitVoteRequest{CandidateID: candidate.ID},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.CodeInvalidData,
		},
		{
			name:           "missing candidate_id",
			requestBody:    models.SubmitVoteRequest{VoterID: voter.ID},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.CodeInvalidData,
		},
		{
			name:           "unknown voter",
			requestBody:    models.SubmitVoteRequest{VoterID: "nonexistent", CandidateID: candidate.ID},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.CodeInvalidData,
		},
		{
			name:           "unknown candidate",
			requestBody:    models.SubmitVoteRequest{VoterID: voter.ID, CandidateID: "nonexistent"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.CodeInvalidData,
		},
		{
			name:           "voter from another election",
			requestBody:    models.SubmitVoteRequest{VoterID: otherVoter.ID, CandidateID: candidate.ID},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.CodeInvalidData,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not json",
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.CodeInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if str, ok := tt.requestBody.(string); ok {
				req = httptest.NewRequest("POST", "/elections/"+election.ID+"/votes", bytes.NewReader([]byte(str)))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = testutil.MakeRequest("POST", "/elections/"+election.ID+"/votes", tt.requestBody, nil)
			}
			req.SetPathValue("id", election.ID)
			w := httptest.NewRecorder()

			handler.Submit(w, req)

			testutil.AssertErrorCode(t, w, tt.expectedStatus, tt.expectedCode)
		})
	}
}

// TestStreamVotes runs the SSE feed against the in-memory store, whose
// subscriptions deliver on insert, and verifies that a cast vote shows up
// as an event scoped to its own election.
func TestStreamVotes(t *testing.T) {
	st := memstore.New()
	defer st.Close()

	handler := NewVoteHandler(st, voting.NewSubmitter(st))

	election := testutil.CreateTestElection(t, st, true)
	candidate := testutil.AddTestCandidate(t, st, election.ID, "Alice Chen", "President")
	voter := testutil.RegisterTestVoter(t, st, election.ID, "fp-stream-test")

	// A second election whose votes must not leak into the stream
	otherElection := testutil.CreateTestElection(t, st, true)
	otherCandidate := testutil.AddTestCandidate(t, st, otherElection.ID, "Bob Park", "President")
	otherVoter := testutil.RegisterTestVoter(t, st, otherElection.ID, "fp-stream-other")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/elections/"+election.ID+"/votes/stream", nil).WithContext(ctx)
	req.SetPathValue("id", election.ID)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		handler.Stream(w, req)
		close(done)
	}()

	// Give the handler time to register its subscription
	time.Sleep(100 * time.Millisecond)

	testutil.CastTestVote(t, st, voter.ID, candidate.ID)
	testutil.CastTestVote(t, st, otherVoter.ID, otherCandidate.ID)

	// Let the event travel through the subscription into the stream
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected Content-Type text/event-stream, got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: vote") {
		t.Fatalf("Expected a vote event in the stream, got: %q", body)
	}
	if !strings.Contains(body, candidate.ID) {
		t.Errorf("Expected the vote's candidate in the stream, got: %q", body)
	}
	if strings.Contains(body, otherCandidate.ID) {
		t.Errorf("Expected no events from other elections, got: %q", body)
	}
	if strings.Contains(body, voter.ID) {
		t.Errorf("Expected voter id to stay out of the stream, got: %q", body)
	}
}

func TestStreamVotesUnknownElection(t *testing.T) {
	st := memstore.New()
	defer st.Close()

	handler := NewVoteHandler(st, voting.NewSubmitter(st))

	req := httptest.NewRequest("GET", "/elections/nonexistent/votes/stream", nil)
	req.SetPathValue("id", "nonexistent")
	w := httptest.NewRecorder()

	handler.Stream(w, req)

	testutil.AssertErrorCode(t, w, http.StatusNotFound, models.CodeNotFound)
}
