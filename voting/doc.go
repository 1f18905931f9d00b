// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package voting holds the backend-agnostic election logic: voter
// registration, vote submission, and result computation over any
// store.Store.
//
// The package is built around one discipline: never check-then-act against
// the store. Registration reads first only as a fast path; the insert that
// follows a miss relies on the store's uniqueness constraint to arbitrate
// races, and a conflict means re-read and return the winner. Submission
// skips the pre-read entirely, so a duplicate vote is detected by exactly
// one mechanism, the store's (voter, position) constraint, regardless of
// how many tabs race. Results are recomputed from the vote list on every
// read; there are no counters to drift.
package voting
