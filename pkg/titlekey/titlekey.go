// Package titlekey produces the normalized form of a document title used as
// the equality key when cross-referencing documents between the MevzuatGPT
// store and the portal metadata store. The two stores are maintained
// independently and disagree on casing, punctuation and spacing, so raw
// title comparison is useless.
package titlekey

import (
	"regexp"
	"strings"
)

// Both cases of every Turkish-specific letter are substituted explicitly.
// Generic case folding is not safe here: lower-casing a dotted capital I
// (İ) yields "i" plus a combining dot, and a dotless ı survives ToLower
// untouched, so the fold runs on the original characters first.
var turkishFold = strings.NewReplacer(
	"ı", "i", "İ", "i",
	"ğ", "g", "Ğ", "g",
	"ü", "u", "Ü", "u",
	"ş", "s", "Ş", "s",
	"ö", "o", "Ö", "o",
	"ç", "c", "Ç", "c",
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
)

// Normalize canonicalizes a free-text title for comparison: Turkish letters
// folded to ASCII, lower-cased, punctuation stripped, whitespace runs
// collapsed, trimmed. Deterministic and total; empty input yields "".
// Stripping happens before the collapse so that punctuation surrounded by
// spaces ("a - b") leaves a single space behind and a second Normalize is a
// no-op.
//
// This is an approximate-match heuristic, not a bijection: two distinct
// titles that differ only in stripped punctuation collide.
func Normalize(title string) string {
	if title == "" {
		return ""
	}
	s := turkishFold.Replace(title)
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
