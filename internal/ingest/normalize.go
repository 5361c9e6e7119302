// Package ingest turns heterogeneous result spreadsheets into canonical
// roster.Student records: sheet classification, header-row discovery, fuzzy
// column resolution, and per-row mapping with national-ID validation.
package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// arabicDiacritics covers the combining short-vowel marks (fathatan through
// sukun). Headers are typed with and without them interchangeably.
var arabicDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x064B, Hi: 0x0652, Stride: 1}},
}

// keepRunes is the post-normalization alphabet: ASCII alphanumerics plus
// the base Arabic letters. Everything else (whitespace, punctuation,
// tatweel) is dropped. The Arabic block is split around U+0640 so kashida
// elongation never survives into the canonical form.
var keepRunes = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: '0', Hi: '9', Stride: 1},
		{Lo: 'A', Hi: 'Z', Stride: 1},
		{Lo: 'a', Hi: 'z', Stride: 1},
		{Lo: 0x0621, Hi: 0x063A, Stride: 1},
		{Lo: 0x0641, Hi: 0x064A, Stride: 1},
	},
	LatinOffset: 3,
}

func unifyArabic(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ':
		return 'ا' // alef variants -> bare alef
	case 'ة':
		return 'ه' // taa marbuta -> haa
	case 'ى':
		return 'ي' // alef maqsura -> yaa
	}
	return unicode.ToLower(r)
}

// Normalize canonicalizes a raw cell or label value so that disparate
// spellings of the same logical token compare equal. It is pure and
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(v any) string {
	s := stringify(v)
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(s)

	t := transform.Chain(
		runes.Remove(runes.In(arabicDiacritics)),
		runes.Map(unifyArabic),
		runes.Remove(runes.NotIn(keepRunes)),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		// The chain never fails on valid UTF-8; malformed input degrades
		// to the trimmed original.
		return s
	}
	return out
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
