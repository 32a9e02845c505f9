package oracle

import (
	"context"
	"sort"

	"go-dialog/internal/textutil"
)

// Jaccard is a model-free SynonymyDetector scoring phrase pairs by token
// set overlap. The replica generator uses it for cheap lexical similarity
// over common phrases and facts; the calibrated synonymy model stays in
// charge of novelty checks.
type Jaccard struct {
	threshold float64
}

func NewJaccard(threshold float64) *Jaccard {
	return &Jaccard{threshold: threshold}
}

func (j *Jaccard) Threshold() float64 { return j.threshold }

func (j *Jaccard) MostSimilar(ctx context.Context, query string, candidates []string, topK int) ([]Ranked, error) {
	queryTokens := tokenSet(query)
	ranked := make([]Ranked, 0, len(candidates))
	for _, cand := range candidates {
		ranked = append(ranked, Ranked{Text: cand, Score: jaccard(queryTokens, tokenSet(cand))})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range textutil.Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	shared := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
