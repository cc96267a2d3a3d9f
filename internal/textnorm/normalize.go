// Package textnorm repairs the free text delivered by the open-data feed: HTML entities,
// UTF-8 that was decoded as a single-byte code page somewhere upstream, and whitespace runs
// that stand in for paragraph breaks.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const paragraphBreak = "\n\n"

var entities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
	"&mdash;", "—",
	"&ndash;", "–",
	"&hellip;", "…",
	"&ldquo;", `"`,
	"&rdquo;", `"`,
	"&lsquo;", "'",
	"&rsquo;", "'",
	"&bullet;", "•",
	"&bull;", "•",
)

// garbled holds UTF-8 punctuation as it looks after being decoded as Windows-1252 or Latin-1.
// Longer sequences come first, the bare "â€" prefix is a right double quote whose last byte was lost.
var garbled = strings.NewReplacer(
	"\u00e2\u20ac\u2122", "'",
	"\u00e2\u20ac\u02dc", "'",
	"\u00e2\u20ac\u0153", `"`,
	"\u00e2\u20ac\u009d", `"`,
	"\u00e2\u20ac\u201c", "\u2013",
	"\u00e2\u20ac\u201d", "\u2014",
	"\u00e2\u20ac\u00a6", "\u2026",
	"\u00e2\u20ac\u00a2", "\u2022",
	"\u00e2\u0080\u0099", "'",
	"\u00e2\u0080\u0098", "'",
	"\u00e2\u0080\u009c", `"`,
	"\u00e2\u0080\u009d", `"`,
	"\u00e2\u0080\u0093", "\u2013",
	"\u00e2\u0080\u0094", "\u2014",
	"\u00e2\u0080\u00a6", "\u2026",
	"\u00e2\u0080\u00a2", "\u2022",
	"\u00e2\u00a2", "\u2022",
	"\u00e2\u20ac", `"`,
)

var smartQuotes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

var roundTripEncodings = []encoding.Encoding{charmap.Windows1252, charmap.ISO8859_1}

var (
	whitespaceRun    = regexp.MustCompile(`\s{2,}`)
	listMarkerBefore = regexp.MustCompile(`(?:[•\-–]|\d+\.)$`)
	listMarkerAfter  = regexp.MustCompile(`^(?:[•\-–]|\d+\.)`)
)

// Normalize returns display-ready text. Empty input is returned as is and
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	s := DecodeEntities(raw)
	s = RepairEncoding(s)
	return collapseWhitespace(s)
}

// DecodeEntities decodes until nothing is left, so "&amp;amp;" ends up as "&".
// Every replacement shortens the text, which bounds the loop.
func DecodeEntities(s string) string {
	for {
		decoded := entities.Replace(s)
		if decoded == s {
			return s
		}
		s = decoded
	}
}

// RepairEncoding repeats the byte level round trip while it keeps repairing, which undoes text
// garbled more than once, then maps the known garbled sequences the round trip could not reach.
// The whole pass is repeated until the text is stable.
func RepairEncoding(s string) string {
	for {
		repaired := repairOnce(s)
		if repaired == s {
			return s
		}
		s = repaired
	}
}

func repairOnce(s string) string {
	for {
		repaired, ok := repairByRoundTrip(s)
		if !ok {
			break
		}
		s = repaired
	}
	return smartQuotes.Replace(repairKnownSequences(s))
}

// repairByRoundTrip reinterprets every rune as a byte of a single-byte code page and
// decodes the bytes as UTF-8 again.
func repairByRoundTrip(s string) (string, bool) {
	for _, enc := range roundTripEncodings {
		raw, err := enc.NewEncoder().String(s)
		if err != nil {
			continue
		}
		if raw != s && utf8.ValidString(raw) {
			return raw, true
		}
	}
	return s, false
}

func repairKnownSequences(s string) string {
	return garbled.Replace(s)
}

func collapseWhitespace(s string) string {
	runs := whitespaceRun.FindAllStringIndex(s, -1)
	if len(runs) == 0 {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, run := range runs {
		b.WriteString(s[last:run[0]])
		b.WriteString(separator(s[:run[0]], s[run[0]:run[1]], s[run[1]:]))
		last = run[1]
	}
	b.WriteString(s[last:])
	return strings.TrimSpace(b.String())
}

// separator replaces a whitespace run. Next to a list marker the run shrinks to one character,
// a line break when the item starts on a new line and a space otherwise.
func separator(before, run, after string) string {
	markerAfter := listMarkerAfter.MatchString(head(after, 16))
	switch {
	case markerAfter && strings.Contains(run, "\n"):
		return "\n"
	case markerAfter || listMarkerBefore.MatchString(tail(before, 16)):
		return " "
	default:
		return paragraphBreak
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
