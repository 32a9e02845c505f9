package relevance

import (
	"context"
	"math"
	"sort"

	"go-dialog/internal/oracle"
)

// VectorRelevancy ranks premises against a question by embedding cosine
// similarity. It satisfies the relevancy oracle contract; scores share the
// same [0,1] range and threshold semantics as the trained model.
type VectorRelevancy struct {
	embedder *Embedder
	cache    *Cache
}

// NewVectorRelevancy builds the detector. cache may be nil, in which case
// every phrase is embedded on each call.
func NewVectorRelevancy(embedder *Embedder, cache *Cache) *VectorRelevancy {
	return &VectorRelevancy{embedder: embedder, cache: cache}
}

func (v *VectorRelevancy) embed(ctx context.Context, text string) ([]float32, error) {
	if v.cache != nil {
		vec, ok, err := v.cache.Get(ctx, text)
		if err == nil && ok {
			return vec, nil
		}
		// Cache trouble falls through to a fresh embedding.
	}
	vec, err := v.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if v.cache != nil {
		_ = v.cache.Put(ctx, text, vec)
	}
	return vec, nil
}

func (v *VectorRelevancy) MostRelevant(ctx context.Context, question string, premises []string, topK int) ([]oracle.Ranked, error) {
	if len(premises) == 0 {
		return nil, nil
	}
	queryVec, err := v.embed(ctx, question)
	if err != nil {
		return nil, err
	}

	ranked := make([]oracle.Ranked, 0, len(premises))
	for _, premise := range premises {
		vec, err := v.embed(ctx, premise)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, oracle.Ranked{Text: premise, Score: cosine(queryVec, vec)})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
