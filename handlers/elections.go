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

type ElectionHandler struct {
	store store.Store
}

func NewElectionHandler(st store.Store) *ElectionHandler {
	return &ElectionHandler{store: st}
}

// Create handles POST /elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Fail(w, models.CodeInvalidData, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.Fail(w, models.CodeInvalidData, "title is required")
		return
	}

	election, err := h.store.CreateElection(r.Context(), models.Election{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		slog.Error("failed to create election", "error", err)
		middleware.FailErr(w, err)
		return
	}

	slog.Info("election created", "election_id", election.ID, "title", election.Title)

	middleware.Success(w, http.StatusCreated, election)
}

// List handles GET /elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	elections, err := h.store.ListElections(r.Context())
	if err != nil {
		slog.Error("failed to list elections", "error", err)
		middleware.FailErr(w, err)
		return
	}

	middleware.Success(w, http.StatusOK, elections)
}

// GetCurrent handles GET /elections/current
// Returns the newest election together with its candidates, which is all
// the voting page needs to render.
func (h *ElectionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	election, err := h.store.CurrentElection(r.Context())
	if err != nil {
		middleware.FailErr(w, err)
		return
	}

	candidates, err := h.store.ListCandidates(r.Context(), election.ID)
	if err != nil {
		slog.Error("failed to list candidates", "error", err, "election_id", election.ID)
		middleware.FailErr(w, err)
		return
	}

	middleware.Success(w, http.StatusOK, models.ElectionWithCandidates{
		Election:   election,
		Candidates: candidates,
	})
}

// Get handles GET /elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	election, err := h.store.GetElection(r.Context(), id)
	if err != nil {
		middleware.FailErr(w, err)
		return
	}

	middleware.Success(w, http.StatusOK, election)
}

// Update handles PATCH /elections/{id}
func (h *ElectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Fail(w, models.CodeInvalidData, "Invalid JSON")
		return
	}

	election, err := h.store.GetElection(r.Context(), id)
	if err != nil {
		middleware.FailErr(w, err)
		return
	}

	if req.Title != nil {
		election.Title = *req.Title
	}
	if req.Description != nil {
		election.Description = *req.Description
	}
	if election.Title == "" {
		middleware.Fail(w, models.CodeInvalidData, "title is required")
		return
	}

	election, err = h.store.UpdateElection(r.Context(), election)
	if err != nil {
		slog.Error("failed to update election", "error", err, "election_id", id)
		middleware.FailErr(w, err)
		return
	}

	slog.Info("election updated", "election_id", election.ID)

	middleware.Success(w, http.StatusOK, election)
}

// Open handles POST /elections/{id}/open
func (h *ElectionHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, true)
}

// Close handles POST /elections/{id}/close
func (h *ElectionHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, false)
}

func (h *ElectionHandler) setOpen(w http.ResponseWriter, r *http.Request, open bool) {
	id := r.PathValue("id")
	if id == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	election, err := h.store.SetElectionOpen(r.Context(), id, open)
	if err != nil {
		middleware.FailErr(w, err)
		return
	}

	if open {
		slog.Info("voting session opened", "election_id", election.ID)
	} else {
		slog.Info("voting session closed", "election_id", election.ID)
	}

	middleware.Success(w, http.StatusOK, election)
}

// Delete handles DELETE /elections/{id}
// Removes the election along with its candidates, voters, and votes.
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	if err := h.store.DeleteElection(r.Context(), id); err != nil {
		middleware.FailErr(w, err)
		return
	}

	slog.Info("election deleted", "election_id", id)

	middleware.Success(w, http.StatusOK, nil)
}
