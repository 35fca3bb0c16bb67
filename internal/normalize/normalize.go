// Package normalize cleans heterogeneous extracted fragments into
// comparable, storable plaintext.
package normalize

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// punctReplacer maps common non-ASCII punctuation variants to canonical
// ASCII forms without touching alphanumeric content.
var punctReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
	"…", "...", // ellipsis
	" ", " ", // no-break space
	"​", "", // zero-width space
	"\uFEFF", "", // BOM
)

// maxPasses bounds the fixpoint loop. Real abstracts converge in two or
// three passes; anything still changing after this many is adversarial
// and collapses to the empty string, which is its own fixed point.
const maxPasses = 64

// Text strips markup, decodes entities, folds unicode compatibility
// variants, and collapses whitespace. It is total and idempotent: passes
// are applied until a fixed point, so text that only reveals further
// markup after entity decoding (e.g. "&lt;p&gt;") still normalizes
// cleanly. Whitespace-only or markup-only input yields the empty string.
func Text(s string) string {
	for i := 0; i < maxPasses; i++ {
		next := pass(s)
		if next == s {
			return next
		}
		s = next
	}
	return ""
}

func pass(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = norm.NFKC.String(s)
	s = punctReplacer.Replace(s)
	// strings.Fields splits on all unicode whitespace, collapsing runs.
	return strings.Join(strings.Fields(s), " ")
}

// Keywords normalizes a delimited keyword string into an ordered,
// de-duplicated list. Scopus pages delimit with semicolons, CrossRef
// subjects arrive pre-split; both funnel through Dedupe.
func Keywords(raw string) []string {
	cleaned := Text(raw)
	if cleaned == "" {
		return nil
	}
	parts := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ';' || r == ',' || r == '|'
	})
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return Dedupe(parts)
}

// Dedupe removes duplicates (case-insensitive) while preserving first-seen
// order. Empty entries are dropped.
func Dedupe(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
