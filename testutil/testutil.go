// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ballot-box/auth"
	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
	"github.com/danielhkuo/ballot-box/store/sqlstore"
)

// Standard admin credentials for tests.
const (
	TestAdminEmail    = "admin@example.com"
	TestAdminPassword = "correct horse battery staple"
	TestSessionSecret = "0123456789abcdef0123456789abcdef"
)

// NewStore opens a fresh in-memory SQLite store. The suite runs against
// the same store implementation the sqlite backend ships, so handler
// tests exercise real uniqueness constraints without external services.
func NewStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// NewAuthService builds a session service with the standard test
// credentials.
func NewAuthService(t *testing.T) *auth.Service {
	t.Helper()

	svc, err := auth.NewService(auth.Config{
		AdminEmail:    TestAdminEmail,
		AdminPassword: TestAdminPassword,
		Secret:        TestSessionSecret,
	})
	if err != nil {
		t.Fatalf("Failed to build auth service: %v", err)
	}

	return svc
}

// SignInTestAdmin signs in with the standard credentials and returns the
// bearer token.
func SignInTestAdmin(t *testing.T, svc *auth.Service) string {
	t.Helper()

	token, _, err := svc.SignIn(TestAdminEmail, TestAdminPassword, "127.0.0.1")
	if err != nil {
		t.Fatalf("Failed to sign in test admin: %v", err)
	}

	return token
}

// CreateTestElection creates an election, opened for voting when open is
// true.
func CreateTestElection(t *testing.T, st store.Store, open bool) models.Election {
	t.Helper()

	election, err := st.CreateElection(context.Background(), models.Election{
		Title:       "Student Council 2025",
		Description: "Spring term election",
	})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	if open {
		election, err = st.SetElectionOpen(context.Background(), election.ID, true)
		if err != nil {
			t.Fatalf("Failed to open test election: %v", err)
		}
	}

	return election
}

// AddTestCandidate adds a candidate to the election.
func AddTestCandidate(t *testing.T, st store.Store, electionID, name, position string) models.Candidate {
	t.Helper()

	candidate, err := st.CreateCandidate(context.Background(), models.Candidate{
		ElectionID: electionID,
		Name:       name,
		Position:   position,
	})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidate
}

// RegisterTestVoter registers a voter by fingerprint.
func RegisterTestVoter(t *testing.T, st store.Store, electionID, fingerprint string) models.Voter {
	t.Helper()

	voter, err := st.CreateVoter(context.Background(), models.Voter{
		ElectionID:  electionID,
		Fingerprint: fingerprint,
	})
	if err != nil {
		t.Fatalf("Failed to register test voter: %v", err)
	}

	return voter
}

// CastTestVote records a vote for the candidate by the voter.
func CastTestVote(t *testing.T, st store.Store, voterID, candidateID string) models.Vote {
	t.Helper()

	vote, err := st.CreateVote(context.Background(), models.Vote{
		VoterID:     voterID,
		CandidateID: candidateID,
	})
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return vote
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertEnvelope checks for a success envelope and decodes its data
// payload into v (pass nil to skip the payload).
func AssertEnvelope(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	var resp models.APIResponse
	AssertJSON(t, w, &resp)
	if !resp.Success {
		t.Fatalf("Expected success envelope, got error %q (%s)", resp.Error, resp.ErrorCode)
	}
	if v == nil {
		return
	}

	// Data round-trips through JSON to land in the caller's type.
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("Failed to re-encode envelope data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("Failed to decode envelope data: %v", err)
	}
}

// AssertErrorCode checks for an error envelope with the given status and
// error code.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	AssertStatus(t, w, status)

	var resp models.APIResponse
	AssertJSON(t, w, &resp)
	if resp.Success {
		t.Fatalf("Expected error envelope, got success. Body: %s", w.Body.String())
	}
	if resp.ErrorCode != code {
		t.Errorf("Expected errorCode %q, got %q (error: %s)", code, resp.ErrorCode, resp.Error)
	}
}
