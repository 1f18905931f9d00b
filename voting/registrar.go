// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// Registrar hands out voter identities: exactly one Voter row per
// (election, fingerprint), no matter how many times or how concurrently a
// device registers.
type Registrar struct {
	store store.Store
}

func NewRegistrar(s store.Store) *Registrar {
	return &Registrar{store: s}
}

// EnsureVoter returns the voter for this fingerprint, creating the row on
// first sight. The read-insert-reread sequence tolerates racing
// registrations for the same fingerprint (two tabs, two devices with equal
// signals): the store's uniqueness constraint picks the winner, and the
// loser's conflict is swallowed in favor of re-reading the winning row.
// The second return reports whether this call created the voter.
func (r *Registrar) EnsureVoter(ctx context.Context, electionID, fingerprint string) (models.Voter, bool, error) {
	voter, err := r.store.FindVoter(ctx, electionID, fingerprint)
	if err == nil {
		return voter, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Voter{}, false, err
	}

	created, err := r.store.CreateVoter(ctx, models.Voter{
		ElectionID:  electionID,
		Fingerprint: fingerprint,
	})
	if err == nil {
		return created, true, nil
	}
	if !store.IsConflict(err) {
		return models.Voter{}, false, err
	}

	// Lost the insert race; the winning row exists now
	slog.Debug("voter registration race recovered", "election_id", electionID)
	voter, reErr := r.store.FindVoter(ctx, electionID, fingerprint)
	if reErr != nil {
		if errors.Is(reErr, store.ErrNotFound) {
			// The winner vanished between conflict and re-read, which takes
			// a concurrent election delete; report the conflict we saw
			return models.Voter{}, false, err
		}
		return models.Voter{}, false, reErr
	}
	return voter, false, nil
}
