package oracle

import (
	"context"
	"testing"
)

func TestJaccardMostSimilarOrdersByOverlap(t *testing.T) {
	j := NewJaccard(0.5)
	cands := []string{
		"я люблю зеленый чай",
		"я люблю кошек",
		"погода хорошая",
	}
	ranked, err := j.MostSimilar(context.Background(), "я люблю кошек и собак", cands, 2)
	if err != nil {
		t.Fatalf("MostSimilar: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("topK not honored: %v", ranked)
	}
	if ranked[0].Text != "я люблю кошек" {
		t.Errorf("best = %q", ranked[0].Text)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("scores not descending: %v", ranked)
	}
}

func TestJaccardIdenticalPhraseScoresOne(t *testing.T) {
	j := NewJaccard(0.5)
	ranked, err := j.MostSimilar(context.Background(), "я живу в москве", []string{"я живу в москве"}, 1)
	if err != nil {
		t.Fatalf("MostSimilar: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Score != 1.0 {
		t.Errorf("identical phrase must score 1.0: %v", ranked)
	}
}

func TestJaccardThreshold(t *testing.T) {
	if got := NewJaccard(0.42).Threshold(); got != 0.42 {
		t.Errorf("Threshold = %v", got)
	}
}
