package textutil

import (
	"strings"
	"unicode"
)

// cjkTables lists the Unicode ranges treated as CJK for join decisions.
// Hangul is included because Korean, like Chinese and Japanese, does not use
// a space between a fragment boundary created by segmentation.
var cjkTables = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
}

// IsCJK reports whether r belongs to a CJK script.
func IsCJK(r rune) bool {
	for _, table := range cjkTables {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

// endsCJK reports whether the last non-space rune of s is CJK.
func endsCJK(s string) bool {
	runes := []rune(strings.TrimRight(s, " \t"))
	if len(runes) == 0 {
		return false
	}
	return IsCJK(runes[len(runes)-1])
}

// startsCJK reports whether the first non-space rune of s is CJK.
func startsCJK(s string) bool {
	runes := []rune(strings.TrimLeft(s, " \t"))
	if len(runes) == 0 {
		return false
	}
	return IsCJK(runes[0])
}

// JoinFragments concatenates transcript fragments using a script-aware rule:
// no separator between two CJK fragments, a single space otherwise. Fragments
// are trimmed before joining; empty fragments are skipped. Mixed-script
// boundaries get a space.
func JoinFragments(fragments []string) string {
	var b strings.Builder
	for _, fragment := range fragments {
		trimmed := strings.TrimSpace(fragment)
		if trimmed == "" {
			continue
		}
		if b.Len() > 0 {
			prev := b.String()
			if !(endsCJK(prev) && startsCJK(trimmed)) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(trimmed)
	}
	return b.String()
}
