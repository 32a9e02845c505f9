package textutil

import (
	"strings"
	"unicode"
)

// Canonize normalizes an utterance for matching: trimmed, lowercased,
// inner whitespace collapsed. Punctuation is kept because modality
// detection relies on it.
func Canonize(text string) string {
	fields := strings.Fields(text)
	return strings.ToLower(strings.Join(fields, " "))
}

// Tokenize splits an utterance into lowercase word tokens, dropping
// punctuation-only runes.
func Tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// stemLen is the prefix length used for crude stem matching of nouns
// and verbs when picking topical follow-up phrases.
const stemLen = 4

// KeyStems collects the 4-rune prefixes of the given tokens, skipping
// tokens shorter than 4 runes.
func KeyStems(tokens []string) map[string]struct{} {
	stems := make(map[string]struct{})
	for _, tok := range tokens {
		runes := []rune(tok)
		if len(runes) >= stemLen {
			stems[string(runes[:stemLen])] = struct{}{}
		}
	}
	return stems
}

// SameStem reports whether any key stem occurs inside word.
func SameStem(word string, keyStems map[string]struct{}) bool {
	for stem := range keyStems {
		if strings.Contains(word, stem) {
			return true
		}
	}
	return false
}

// StemHits counts how many tokens of a phrase share a stem with the key set.
func StemHits(tokens []string, keyStems map[string]struct{}) int {
	hits := 0
	for _, tok := range tokens {
		if SameStem(tok, keyStems) {
			hits++
		}
	}
	return hits
}

// EndsWithQuestionMark reports whether the phrase reads as a question
// on the surface.
func EndsWithQuestionMark(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	return strings.HasSuffix(trimmed, "?")
}
