package collector

import (
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// RedactionMarker is the literal that replaces every match of a redaction
// pattern. Redaction is irreversible and idempotent for a fixed pattern
// set.
const RedactionMarker = "[REDACTED]"

// CompilePatterns compiles the configured redaction expressions with
// case-insensitive matching. Invalid patterns are skipped with a warning
// rather than failing: a broken operator-supplied regex must never take
// the collector down.
func CompilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			slog.Warn("skipping invalid redaction pattern",
				"pattern", p,
				"error", err,
			)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// ApplyRedactions replaces every match of every pattern with the
// redaction marker. Patterns apply independently; an empty input or
// pattern set passes through unchanged.
func ApplyRedactions(text string, patterns []*regexp.Regexp) string {
	if text == "" || len(patterns) == 0 {
		return text
	}
	for _, re := range patterns {
		text = re.ReplaceAllLiteralString(text, RedactionMarker)
	}
	return text
}

// SelectHeaders filters the request headers down to the allow-listed set,
// keyed by lower-cased name. Unknown headers are dropped silently.
// Multi-valued headers keep their first value.
func SelectHeaders(h http.Header, allow map[string]struct{}) map[string]string {
	out := map[string]string{}
	for name, values := range h {
		lower := strings.ToLower(name)
		if _, ok := allow[lower]; !ok {
			continue
		}
		if len(values) > 0 {
			out[lower] = values[0]
		}
	}
	return out
}

// ClampHeaders bounds the total serialized size of a header map.
//
// Headers are visited in sorted-name order (Go maps have no insertion
// order to preserve) accumulating the UTF-8 byte length of "name:value".
// Once the running total would exceed maxBytes the current header and all
// remaining ones are dropped whole; a header is never partially included.
// This is a deliberate best-effort cap, not an exact byte guarantee.
func ClampHeaders(headers map[string]string, maxBytes int) map[string]string {
	if maxBytes < 0 {
		maxBytes = 0
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := map[string]string{}
	total := 0
	for _, name := range names {
		kv := len(name) + 1 + len(headers[name])
		if total+kv > maxBytes {
			break
		}
		total += kv
		out[name] = headers[name]
	}
	return out
}

// NormalizeAllowlist lower-cases and de-duplicates the configured header
// allow-list into a lookup set.
func NormalizeAllowlist(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}
