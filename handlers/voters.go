// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballot-box/fingerprint"
	"github.com/danielhkuo/ballot-box/middleware"
	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/voting"
)

type VoterHandler struct {
	registrar *voting.Registrar
	hasher    *fingerprint.Hasher
}

func NewVoterHandler(registrar *voting.Registrar, hasher *fingerprint.Hasher) *VoterHandler {
	return &VoterHandler{registrar: registrar, hasher: hasher}
}

// Register handles POST /elections/{id}/voters
// Turns the posted browser signals into a fingerprint and gets or creates
// the voter it identifies. Safe to repeat: the same device always comes
// back as the same voter.
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.Fail(w, models.CodeInvalidData, "election id is required")
		return
	}

	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.Fail(w, models.CodeInvalidData, "Invalid JSON")
		return
	}

	// Collection never fails; an empty or garbage payload degrades to the
	// reduced signal set.
	signals := fingerprint.Collect(req.Signals, r)
	fp := h.hasher.Hash(signals)

	voter, created, err := h.registrar.EnsureVoter(r.Context(), electionID, fp)
	if err != nil {
		slog.Error("failed to register voter", "error", err, "election_id", electionID)
		middleware.FailErr(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		slog.Info("voter registered (new)", "voter_id", voter.ID, "election_id", electionID)
	} else {
		slog.Info("voter registered (existing)", "voter_id", voter.ID, "election_id", electionID)
	}

	middleware.Success(w, status, models.RegisterVoterResponse{
		Voter:       voter,
		Fingerprint: fp,
		Registered:  created,
	})
}
