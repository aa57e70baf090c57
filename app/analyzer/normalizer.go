package analyzer

import (
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

type timestampKind uint8

const (
	timestampAbsent timestampKind = iota
	timestampTime
	timestampString
)

// TimestampInput is the closed set of raw timestamp shapes the source
// produces: absent, an already-parsed instant, or a free-form string.
type TimestampInput struct {
	kind timestampKind
	t    time.Time
	s    string
}

func TimestampAbsent() TimestampInput {
	return TimestampInput{kind: timestampAbsent}
}

func TimestampOf(t time.Time) TimestampInput {
	return TimestampInput{kind: timestampTime, t: t}
}

func TimestampString(s string) TimestampInput {
	return TimestampInput{kind: timestampString, s: s}
}

func (t TimestampInput) IsAbsent() bool {
	return t.kind == timestampAbsent
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// NormalizeTimestamp converts a raw timestamp to UTC. It is total: absent
// input and unparseable strings fall back to the current instant with a
// quality warning, so a bad upstream timestamp never blocks ingestion.
// Strings without zone information are assumed to already be in UTC.
func NormalizeTimestamp(input TimestampInput) time.Time {
	switch input.kind {
	case timestampTime:
		if input.t.IsZero() {
			return time.Now().UTC()
		}
		return input.t.UTC()
	case timestampString:
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, input.s); err == nil {
				return parsed.UTC()
			}
		}
		slog.Warn("Could not parse timestamp, falling back to current instant", "value", input.s)
		return time.Now().UTC()
	default:
		return time.Now().UTC()
	}
}

// NormalizeText trims outer whitespace, collapses every whitespace run to a
// single space and applies NFC normalization. maxLength > 0 truncates the
// result (counted in runes). An empty result maps back to nil: an empty
// string is never returned as a real value.
func NormalizeText(text string, maxLength int) *string {
	normalized := strings.Join(strings.Fields(text), " ")
	normalized = norm.NFC.String(normalized)

	if maxLength > 0 {
		runes := []rune(normalized)
		if len(runes) > maxLength {
			normalized = string(runes[:maxLength])
			slog.Warn("Text truncated", "max_length", maxLength)
		}
	}

	if normalized == "" {
		return nil
	}
	return &normalized
}
