package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerTR lower-cases s with Turkish casing rules (İ -> i, I -> ı).
// A Caser is not safe for concurrent use, so one is built per call.
func LowerTR(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

// ContainsLowerTR reports whether needle is a case-insensitive substring of haystack.
func ContainsLowerTR(haystack, needle string) bool {
	return strings.Contains(LowerTR(haystack), LowerTR(needle))
}

// Fold lower-cases s and strips diacritics so that "Nişantaşı", "NİŞANTAŞI"
// and "nisantasi" all fold to the same string.
func Fold(s string) string {
	lower := LowerTR(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lower)
	if err != nil {
		folded = lower
	}
	return strings.Map(func(r rune) rune {
		if r == 'ı' {
			return 'i'
		}
		return r
	}, folded)
}

// ContainsAnyFold reports whether any keyword occurs in the already folded text.
func ContainsAnyFold(folded string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(folded, Fold(k)) {
			return true
		}
	}
	return false
}

// ContainsWordFold is ContainsAnyFold with each keyword anchored at the start
// of a word, so "site" matches "sitede" but not "website".
func ContainsWordFold(folded string, keywords ...string) bool {
	for _, k := range keywords {
		if ContainsWordPrefix(folded, Fold(k)) {
			return true
		}
	}
	return false
}

// ContainsWordPrefix reports whether word occurs in text starting at a word
// boundary. Turkish attaches case suffixes to the end ("Modada",
// "Beşiktaş'ta"), so only the start is anchored.
func ContainsWordPrefix(text, word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i <= len(text)-len(word); {
		idx := strings.Index(text[i:], word)
		if idx < 0 {
			return false
		}
		pos := i + idx
		if pos == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:pos])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		i = pos + 1
	}
	return false
}

// ContainsWholeWordFold is ContainsWordFold with both ends anchored, so "buy"
// matches "buy a flat" but not "buyuk".
func ContainsWholeWordFold(folded string, keywords ...string) bool {
	for _, k := range keywords {
		word := Fold(k)
		if word == "" {
			continue
		}
		for i := 0; i <= len(folded)-len(word); {
			idx := strings.Index(folded[i:], word)
			if idx < 0 {
				break
			}
			pos := i + idx
			end := pos + len(word)
			if isBoundary(folded, pos, end) {
				return true
			}
			i = pos + 1
		}
	}
	return false
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
			return false
		}
	}
	if end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(next) || unicode.IsDigit(next) {
			return false
		}
	}
	return true
}
