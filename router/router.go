// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/ballot-box/auth"
	"github.com/danielhkuo/ballot-box/cliparse"
	"github.com/danielhkuo/ballot-box/fingerprint"
	"github.com/danielhkuo/ballot-box/handlers"
	"github.com/danielhkuo/ballot-box/middleware"
	"github.com/danielhkuo/ballot-box/store"
	"github.com/danielhkuo/ballot-box/voting"
)

func NewRouter(st store.Store, sessions *auth.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	hasher := fingerprint.NewHasher()
	if cfg.FingerprintFallback {
		hasher = fingerprint.NewFallbackHasher()
	}

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessions)
	electionHandler := handlers.NewElectionHandler(st)
	candidateHandler := handlers.NewCandidateHandler(st)
	voterHandler := handlers.NewVoterHandler(voting.NewRegistrar(st), hasher)
	voteHandler := handlers.NewVoteHandler(st, voting.NewSubmitter(st))
	resultsHandler := handlers.NewResultsHandler(st, voting.NewResults(st))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Admin session (the handlers read the bearer token themselves)
	mux.HandleFunc("POST /session", middleware.WithLogging(sessionHandler.SignIn))
	mux.HandleFunc("GET /session", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("DELETE /session", middleware.WithLogging(sessionHandler.SignOut))

	// Election management (admin operations)
	mux.HandleFunc("POST /elections", middleware.WithLogging(middleware.RequireSession(sessions, electionHandler.Create)))
	mux.HandleFunc("GET /elections", middleware.WithLogging(middleware.RequireSession(sessions, electionHandler.List)))
	mux.HandleFunc("PATCH /elections/{id}", middleware.WithLogging(middleware.RequireSession(sessions, electionHandler.Update)))
	mux.HandleFunc("POST /elections/{id}/open", middleware.WithLogging(middleware.RequireSession(sessions, electionHandler.Open)))
	mux.HandleFunc("POST /elections/{id}/close", middleware.WithLogging(middleware.RequireSession(sessions, electionHandler.Close)))
	mux.HandleFunc("DELETE /elections/{id}", middleware.WithLogging(middleware.RequireSession(sessions, electionHandler.Delete)))
	mux.HandleFunc("POST /elections/{id}/candidates", middleware.WithLogging(middleware.RequireSession(sessions, candidateHandler.Create)))
	mux.HandleFunc("PATCH /candidates/{id}", middleware.WithLogging(middleware.RequireSession(sessions, candidateHandler.Update)))
	mux.HandleFunc("DELETE /candidates/{id}", middleware.WithLogging(middleware.RequireSession(sessions, candidateHandler.Delete)))
	mux.HandleFunc("GET /elections/{id}/summary", middleware.WithLogging(middleware.RequireSession(sessions, resultsHandler.Summary)))
	mux.HandleFunc("GET /elections/{id}/export", middleware.WithLogging(middleware.RequireSession(sessions, resultsHandler.Export)))

	// Voting operations (public)
	mux.HandleFunc("GET /elections/current", middleware.WithLogging(electionHandler.GetCurrent))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.Get))
	mux.HandleFunc("GET /elections/{id}/candidates", middleware.WithLogging(candidateHandler.List))
	mux.HandleFunc("POST /elections/{id}/voters", middleware.WithLogging(voterHandler.Register))
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(voteHandler.Submit))

	// Results retrieval (public)
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(resultsHandler.Get))
	mux.HandleFunc("GET /elections/{id}/votes/stream", middleware.WithLogging(voteHandler.Stream))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballot-box API v1"))
	})

	return mux
}
