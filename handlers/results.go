// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ballot-box/middleware"
	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
	"github.com/danielhkuo/ballot-box/voting"
)

type ResultsHandler struct {
	store   store.Store
	results *voting.Results
}

func NewResultsHandler(st store.Store, results *voting.Results) *ResultsHandler {
	return &ResultsHandler{store: st, results: results}
}

// Get handles GET /elections/{id}/results
// Live tally per candidate, grouped by position, with the current leader
// of each race.
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	tally, err := h.results.Tally(r.Context(), electionID)
	if err != nil {
		middleware.FailErr(w, err)
		return
	}

	middleware.Success(w, http.StatusOK, tally)
}

// Summary handles GET /elections/{id}/summary
// Dashboard stats: candidate/voter/vote counts, turnout, last vote age.
func (h *ResultsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	summary, err := h.results.Summary(r.Context(), electionID)
	if err != nil {
		middleware.FailErr(w, err)
		return
	}

	middleware.Success(w, http.StatusOK, summary)
}

// Export handles GET /elections/{id}/export
// Streams the election's votes as CSV, one row per vote, oldest first.
// Voter ids stay out of the file; the ballot is anonymous.
func (h *ResultsHandler) Export(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	if _, err := h.store.GetElection(r.Context(), electionID); err != nil {
		middleware.FailErr(w, err)
		return
	}

	votes, err := h.store.ListVotes(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to list votes for export", "error", err, "election_id", electionID)
		middleware.FailErr(w, err)
		return
	}

	candidates, err := h.store.ListCandidates(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to list candidates for export", "error", err, "election_id", electionID)
		middleware.FailErr(w, err)
		return
	}
	names := make(map[string]string, len(candidates))
	for _, c := range candidates {
		names[c.ID] = c.Name
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="election-`+electionID+`-votes.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write([]string{"vote_id", "position", "candidate_id", "candidate", "cast_at"})
	for _, v := range votes {
		cw.Write([]string{
			v.ID,
			v.Position,
			v.CandidateID,
			names[v.CandidateID],
			v.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		// Headers are long gone; nothing to do but note it.
		slog.Error("failed to write vote export", "error", err, "election_id", electionID)
		return
	}

	slog.Info("votes exported", "election_id", electionID, "rows", len(votes))
}
