// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package fingerprint derives deterministic voter fingerprints from browser
signals, used to deduplicate voters without collecting personal data.

# Collection

Collect normalizes the raw signal map posted by the voting page into a
SignalSet covering a fixed 20-key list (user agent, languages, platform,
hardware concurrency, device memory, touch points, screen geometry, timezone
name and offset, canvas and WebGL snapshots, cookie and do-not-track flags,
plugin list). Signals the browser could not provide are recorded as defined
sentinels ("" or 0), never omitted; omission would change the canonical
string and break determinism across capability differences that are
themselves part of the fingerprint. Collection never fails: a payload with
nothing usable degrades to the reduced minimal set (userAgent, language,
platform, screenWidth, screenHeight, timezoneOffset).

# Hashing

Canonical serialization is a JSON object literal with keys sorted ascending,
so collection order never changes the result. The primary digest is SHA-256
of the UTF-8 canonical string, rendered as 64 lowercase hex characters. The
fallback digest, selected at Hasher construction for deployments whose
clients lack a crypto digest, is the 32-bit rolling polynomial

	h = h*31 + codeUnit

over UTF-16 code units, wrapped to signed 32 bits, absolute value, base-36.
The two paths are never mixed at runtime: mixed digests would make the same
device look like two voters.

# Usage

	set := fingerprint.Collect(req.Signals, r)
	fp := hasher.Hash(set)

Both operations are pure and touch no I/O beyond reading request headers.
*/
package fingerprint
