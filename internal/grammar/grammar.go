// Package grammar holds the precompiled generative grammars used by
// smalltalk rules. Grammars are compiled offline and shipped as a binary
// artifact (see artifact.go); at runtime they only generate and rank
// candidate utterances.
package grammar

import (
	"sort"
	"strings"

	"go-dialog/internal/textutil"
)

// SeedSlot marks the position in a production template that is filled with
// a word from the triggering utterance.
const SeedSlot = "$seed"

// Production is one generation template. Weight is its base rank.
type Production struct {
	Template string
	Weight   float64
}

// Grammar is an ordered set of productions sharing a key.
type Grammar struct {
	Key         string
	Productions []Production
}

// Candidate is a generated utterance with its rank.
type Candidate struct {
	Text string
	Rank float64
}

// Generate expands every production against the seed words and returns the
// candidates ranked best-first. Seed words absent from the vocabulary are
// skipped; a nil or empty vocabulary accepts every word. Productions
// without a seed slot yield their template verbatim.
func (g *Grammar) Generate(seedWords []string, vocab map[string]struct{}) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})

	add := func(text string, rank float64) {
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, Candidate{Text: text, Rank: rank})
	}

	seedStems := textutil.KeyStems(seedWords)

	for _, prod := range g.Productions {
		if !strings.Contains(prod.Template, SeedSlot) {
			add(prod.Template, prod.Weight*(1+overlap(prod.Template, seedStems)))
			continue
		}
		for _, word := range seedWords {
			if len(vocab) > 0 {
				if _, known := vocab[word]; !known {
					continue
				}
			}
			text := strings.ReplaceAll(prod.Template, SeedSlot, word)
			add(text, prod.Weight*(1+overlap(text, seedStems)))
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank > out[j].Rank })
	return out
}

// overlap scores how much of the generated text touches the seed topic.
func overlap(text string, seedStems map[string]struct{}) float64 {
	tokens := textutil.Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}
	hits := textutil.StemHits(tokens, seedStems)
	return float64(hits) / float64(len(tokens))
}
