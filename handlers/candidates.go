// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballot-box/middleware"
	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

type CandidateHandler struct {
	store store.Store
}

func NewCandidateHandler(st store.Store) *CandidateHandler {
	return &CandidateHandler{store: st}
}

// Create handles POST /elections/{id}/candidates
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	var req models.CreateCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Fail(w, models.CodeInvalidData, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.Fail(w, models.CodeInvalidData, "name is required")
		return
	}
	if req.Position == "" {
		middleware.Fail(w, models.CodeInvalidData, "position is required")
		return
	}

	candidate, err := h.store.CreateCandidate(r.Context(), models.Candidate{
		ElectionID:  electionID,
		Name:        req.Name,
		Position:    req.Position,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		slog.Error("failed to create candidate", "error", err, "election_id", electionID)
		middleware.FailErr(w, err)
		return
	}

	slog.Info("candidate created", "candidate_id", candidate.ID, "position", candidate.Position)

	middleware.Success(w, http.StatusCreated, candidate)
}

// List handles GET /elections/{id}/candidates
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	candidates, err := h.store.ListCandidates(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to list candidates", "error", err, "election_id", electionID)
		middleware.FailErr(w, err)
		return
	}

	middleware.Success(w, http.StatusOK, candidates)
}

// Update handles PATCH /candidates/{id}
func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.Fail(w, models.CodeInvalidData, "candidate id is required")
		return
	}

	var req models.UpdateCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Fail(w, models.CodeInvalidData, "Invalid JSON")
		return
	}

	candidate, err := h.store.GetCandidate(r.Context(), id)
	if err != nil {
		middleware.FailErr(w, err)
		return
	}

	if req.Name != nil {
		candidate.Name = *req.Name
	}
	if req.Position != nil {
		candidate.Position = *req.Position
	}
	if req.Description != nil {
		candidate.Description = *req.Description
	}
	if req.ImageURL != nil {
		candidate.ImageURL = *req.ImageURL
	}
	if candidate.Name == "" {
		middleware.Fail(w, models.CodeInvalidData, "name is required")
		return
	}
	if candidate.Position == "" {
		middleware.Fail(w, models.CodeInvalidData, "position is required")
		return
	}

	candidate, err = h.store.UpdateCandidate(r.Context(), candidate)
	if err != nil {
		slog.Error("failed to update candidate", "error", err, "candidate_id", id)
		middleware.FailErr(w, err)
		return
	}

	slog.Info("candidate updated", "candidate_id", candidate.ID)

	middleware.Success(w, http.StatusOK, candidate)
}

// Delete handles DELETE /candidates/{id}
// The store refuses while the election's voting session is open.
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.Fail(w, models.CodeInvalidData, "candidate id is required")
		return
	}

	if err := h.store.DeleteCandidate(r.Context(), id); err != nil {
		middleware.FailErr(w, err)
		return
	}

	slog.Info("candidate deleted", "candidate_id", id)

	middleware.Success(w, http.StatusOK, nil)
}
