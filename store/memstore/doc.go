// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package memstore provides the in-memory store backend.

Everything lives in maps guarded by a single RWMutex. The two uniqueness
rules are enforced with explicit index maps, so racing writers see the same
conflict errors the SQL constraints produce, and election deletion cascades
by sweeping the dependent maps. Vote subscriptions are push-based: each
subscriber owns a buffered channel drained by its own goroutine, and
writers never block on a slow subscriber.

The store has an explicit lifecycle: New builds an empty instance and Close
ends every subscription and fails later operations, so no state leaks
between test runs or between server restarts in embedded use.
*/
package memstore
