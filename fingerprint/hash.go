// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"unicode/utf16"
)

// Hasher turns signal sets into fingerprints. The default mode is SHA-256
// over the canonical serialization, rendered as 64 lowercase hex characters.
// NewFallbackHasher selects the 32-bit rolling hash instead; the mode is
// fixed at construction because the two outputs are not comparable and a
// deployment must never mix them.
type Hasher struct {
	fallback bool
}

// NewHasher returns a hasher using the cryptographic path.
func NewHasher() *Hasher {
	return &Hasher{}
}

// NewFallbackHasher returns a hasher using the non-cryptographic rolling
// hash, for deployments serving clients without a crypto digest.
func NewFallbackHasher() *Hasher {
	return &Hasher{fallback: true}
}

// Fallback reports whether the hasher uses the rolling-hash path.
func (h *Hasher) Fallback() bool {
	return h.fallback
}

// Hash computes the fingerprint of a signal set. A nil or empty set hashes
// the reduced sentinel set, so callers always get a usable fingerprint.
func (h *Hasher) Hash(set SignalSet) string {
	if len(set) == 0 {
		set = SignalSet{}.Reduced()
	}
	canonical := set.Canonical()
	if h.fallback {
		return rollingHash(canonical)
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// rollingHash is the h*31+c polynomial over UTF-16 code units, wrapped to
// signed 32 bits; the result is the absolute value in base-36. Matches the
// digest the voting page computes when a crypto digest is unavailable.
func rollingHash(s string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
