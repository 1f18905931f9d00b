// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fingerprint

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// signalDefs lists every signal in the full set, in canonical (sorted) order.
// Numeric signals default to 0, text signals to ""; list signals arrive as
// JSON arrays and are comma-joined.
var signalDefs = []struct {
	key     string
	numeric bool
	list    bool
}{
	{"availHeight", true, false},
	{"availWidth", true, false},
	{"canvas", false, false},
	{"colorDepth", true, false},
	{"cookieEnabled", true, false},
	{"deviceMemory", true, false},
	{"doNotTrack", false, false},
	{"hardwareConcurrency", true, false},
	{"language", false, false},
	{"languages", false, true},
	{"maxTouchPoints", true, false},
	{"pixelDepth", true, false},
	{"platform", false, false},
	{"plugins", false, true},
	{"screenHeight", true, false},
	{"screenWidth", true, false},
	{"timezone", false, false},
	{"timezoneOffset", true, false},
	{"userAgent", false, false},
	{"webgl", false, false},
}

// reducedKeys is the minimal set hashed when collection yields nothing usable.
var reducedKeys = []string{
	"language",
	"platform",
	"screenHeight",
	"screenWidth",
	"timezoneOffset",
	"userAgent",
}

// Signal is one collected attribute value, either text or numeric. The empty
// string and zero double as the "unavailable" sentinels, so a signal the
// browser could not provide still contributes a stable token to the
// canonical form.
type Signal struct {
	Text    string
	Number  float64
	Numeric bool
}

// Text wraps a string value as a Signal.
func Text(s string) Signal {
	return Signal{Text: s}
}

// Number wraps a numeric value as a Signal.
func Number(n float64) Signal {
	return Signal{Number: n, Numeric: true}
}

// SignalSet maps signal names to collected values. Sets produced by Collect
// always carry the full key list; unavailable readings are sentinels, never
// absent keys, so capability gaps are themselves part of the fingerprint.
type SignalSet map[string]Signal

// Collect normalizes the raw signals posted by the voting page into a
// SignalSet. Unknown keys are ignored and malformed values become sentinels;
// collection never fails. When the payload carries no usable signal at all,
// the reduced minimal set is returned instead so a voter with a broken
// collector still gets a stable fingerprint. The request, when non-nil,
// supplies User-Agent and Accept-Language fallbacks.
func Collect(payload map[string]any, r *http.Request) SignalSet {
	set := make(SignalSet, len(signalDefs))
	usable := 0
	for _, def := range signalDefs {
		sig, ok := normalize(payload[def.key], def.numeric, def.list)
		if ok {
			usable++
		}
		set[def.key] = sig
	}

	if r != nil {
		if set["userAgent"].Text == "" {
			if ua := r.UserAgent(); ua != "" {
				set["userAgent"] = Text(ua)
				usable++
			}
		}
		if set["language"].Text == "" {
			if lang := primaryLanguage(r.Header.Get("Accept-Language")); lang != "" {
				set["language"] = Text(lang)
				usable++
			}
		}
	}

	if usable == 0 {
		return set.Reduced()
	}
	return set
}

// Reduced extracts the minimal signal set (user agent, language, platform,
// screen geometry, timezone offset) used when full collection fails.
func (s SignalSet) Reduced() SignalSet {
	out := make(SignalSet, len(reducedKeys))
	for _, key := range reducedKeys {
		if sig, ok := s[key]; ok {
			out[key] = sig
			continue
		}
		out[key] = sentinel(key)
	}
	return out
}

// Canonical serializes the set as a JSON object literal with keys sorted
// ascending. Sorting is what makes the fingerprint independent of collection
// order: two sets holding the same pairs always serialize to the same bytes.
func (s SignalSet) Canonical() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(encodeString(k))
		b.WriteByte(':')
		sig := s[k]
		if sig.Numeric {
			b.WriteString(formatNumber(sig.Number))
		} else {
			b.WriteString(encodeString(sig.Text))
		}
	}
	b.WriteByte('}')
	return b.String()
}

// normalize coerces one raw JSON value into a Signal. ok reports whether the
// client supplied something usable for this signal.
func normalize(raw any, numeric, list bool) (Signal, bool) {
	if raw == nil {
		return sentinelValue(numeric), false
	}

	if numeric {
		switch v := raw.(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Number(0), false
			}
			return Number(v), true
		case bool:
			// cookieEnabled arrives as a JSON bool
			if v {
				return Number(1), true
			}
			return Number(0), true
		case string:
			n, err := strconv.ParseFloat(v, 64)
			if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
				return Number(n), true
			}
		}
		return Number(0), false
	}

	switch v := raw.(type) {
	case string:
		return Text(v), v != ""
	case bool:
		// doNotTrack is sometimes a bool instead of "1"/"0"
		if v {
			return Text("1"), true
		}
		return Text("0"), true
	case float64:
		return Text(formatNumber(v)), true
	case []any:
		if !list {
			return Text(""), false
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return Text(strings.Join(parts, ",")), len(parts) > 0
	}
	return Text(""), false
}

// primaryLanguage extracts the first tag from an Accept-Language header.
func primaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	first = strings.TrimSpace(first)
	if first == "*" {
		return ""
	}
	return first
}

func sentinel(key string) Signal {
	for _, def := range signalDefs {
		if def.key == key {
			return sentinelValue(def.numeric)
		}
	}
	return Text("")
}

func sentinelValue(numeric bool) Signal {
	if numeric {
		return Number(0)
	}
	return Text("")
}

// encodeString JSON-quotes s without HTML escaping, so digests stay
// byte-compatible with the serializer the voting page uses.
func encodeString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// formatNumber renders with minimal digits: 8 -> "8", 0.5 -> "0.5".
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
