// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ballot-box/cliparse"
	"github.com/danielhkuo/ballot-box/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	st := testutil.NewStore(t)
	svc := testutil.NewAuthService(t)
	mux := NewRouter(st, svc, cliparse.Config{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	st := testutil.NewStore(t)
	svc := testutil.NewAuthService(t)
	mux := NewRouter(st, svc, cliparse.Config{})

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "ballot-box API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestRouteExistence(t *testing.T) {
	st := testutil.NewStore(t)
	svc := testutil.NewAuthService(t)
	mux := NewRouter(st, svc, cliparse.Config{})

	// Test that routes respond (handler is invoked)
	// Note: Some routes return 401/404/422 when data doesn't exist, which is
	// valid handler behavior
	testCases := []struct {
		method string
		path   string
	}{
		// Health and root
		{"GET", "/health"},
		{"GET", "/"},

		// Session routes
		{"POST", "/session"},
		{"GET", "/session"},
		{"DELETE", "/session"},

		// Election management routes (admin, expect 401 without a session)
		{"POST", "/elections"},
		{"GET", "/elections"},
		{"PATCH", "/elections/test-id"},
		{"POST", "/elections/test-id/open"},
		{"POST", "/elections/test-id/close"},
		{"DELETE", "/elections/test-id"},
		{"POST", "/elections/test-id/candidates"},
		{"PATCH", "/candidates/test-id"},
		{"DELETE", "/candidates/test-id"},
		{"GET", "/elections/test-id/summary"},
		{"GET", "/elections/test-id/export"},

		// Public voting routes
		{"GET", "/elections/current"},
		{"GET", "/elections/test-id"},
		{"GET", "/elections/test-id/candidates"},
		{"POST", "/elections/test-id/voters"},
		{"POST", "/elections/test-id/votes"},
		{"GET", "/elections/test-id/results"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

// TestAdminRoutesRequireSession verifies that management endpoints reject
// requests without a valid bearer token, and that the public voting surface
// does not.
func TestAdminRoutesRequireSession(t *testing.T) {
	st := testutil.NewStore(t)
	svc := testutil.NewAuthService(t)
	mux := NewRouter(st, svc, cliparse.Config{})

	election := testutil.CreateTestElection(t, st, false)

	adminRoutes := []struct {
		method string
		path   string
	}{
		{"POST", "/elections"},
		{"GET", "/elections"},
		{"PATCH", "/elections/" + election.ID},
		{"POST", "/elections/" + election.ID + "/open"},
		{"POST", "/elections/" + election.ID + "/close"},
		{"DELETE", "/elections/" + election.ID},
		{"POST", "/elections/" + election.ID + "/candidates"},
		{"PATCH", "/candidates/test-id"},
		{"DELETE", "/candidates/test-id"},
		{"GET", "/elections/" + election.ID + "/summary"},
		{"GET", "/elections/" + election.ID + "/export"},
	}

	for _, tc := range adminRoutes {
		t.Run("unauthenticated "+tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401 without a session, got %d", w.Code)
			}
		})
	}

	// With a session the same summary route reaches its handler
	token := testutil.SignInTestAdmin(t, svc)
	req := httptest.NewRequest("GET", "/elections/"+election.ID+"/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with a session, got %d. Body: %s", w.Code, w.Body.String())
	}
}

// TestPublicRoutesSkipSession verifies the voter-facing surface works
// without any credentials.
func TestPublicRoutesSkipSession(t *testing.T) {
	st := testutil.NewStore(t)
	svc := testutil.NewAuthService(t)
	mux := NewRouter(st, svc, cliparse.Config{})

	election := testutil.CreateTestElection(t, st, true)

	publicRoutes := []struct {
		method string
		path   string
	}{
		{"GET", "/elections/current"},
		{"GET", "/elections/" + election.ID},
		{"GET", "/elections/" + election.ID + "/candidates"},
		{"GET", "/elections/" + election.ID + "/results"},
	}

	for _, tc := range publicRoutes {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected 200 without credentials, got %d. Body: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	st := testutil.NewStore(t)
	svc := testutil.NewAuthService(t)
	mux := NewRouter(st, svc, cliparse.Config{})

	// Test that unsupported methods on defined routes return 405
	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},                // Only GET is defined
		{"PUT", "/session"},                // POST, GET, DELETE are defined
		{"PUT", "/elections/test-id"},      // GET, PATCH, DELETE are defined
		{"PUT", "/elections/test-id/open"}, // Only POST is defined
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	st := testutil.NewStore(t)
	svc := testutil.NewAuthService(t)
	mux := NewRouter(st, svc, cliparse.Config{})

	election := testutil.CreateTestElection(t, st, false)

	// The {id} parameter routes to the stored election, not a 404 or a
	// validation error
	req := httptest.NewRequest("GET", "/elections/"+election.ID, nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for stored election, got %d. Body: %s", w.Code, w.Body.String())
	}
}
