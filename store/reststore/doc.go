// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package reststore backs the store with a hosted data service exposing a
// PostgREST-style REST interface: one collection per table, equality filters
// in the query string, writes answered with the affected rows under
// Prefer: return=representation.
//
// The client holds no state and has no transactions. Both uniqueness rules
// live in the remote schema, so writes are issued blind and a 409 comes back
// as the ALREADY_VOTED conflict for callers to reconcile, the same contract
// the SQL backend derives from its UNIQUE constraints.
//
// Every request runs through a bounded retry loop: transport failures and
// 5xx/429 responses are retried with exponential backoff, any other status
// is terminal on the first response. A transport failure that outlives the
// retry budget surfaces as NETWORK_ERROR. Remaining non-2xx statuses map
// onto the fixed taxonomy in classify.
//
// Election deletion cascades client-side with one delete per child
// collection. There is no transaction around the sequence; a failure partway
// leaves orphans that the next attempt sweeps up.
//
// Vote subscriptions poll, like the SQL backend: the REST interface offers
// no change feed to a server-side client.
package reststore
