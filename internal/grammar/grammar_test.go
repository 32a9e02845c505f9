package grammar

import (
	"bytes"
	"encoding/gob"
	"testing"
)

func TestGenerateExpandsSeedSlot(t *testing.T) {
	g := &Grammar{
		Key: "chitchat",
		Productions: []Production{
			{Template: "а ты любишь $seed?", Weight: 1.0},
			{Template: "расскажи еще", Weight: 0.5},
		},
	}
	cands := g.Generate([]string{"кошек", "собак"}, nil)
	if len(cands) != 3 {
		t.Fatalf("got %d candidates: %v", len(cands), cands)
	}
	seen := map[string]bool{}
	for _, c := range cands {
		seen[c.Text] = true
	}
	if !seen["а ты любишь кошек?"] || !seen["а ты любишь собак?"] || !seen["расскажи еще"] {
		t.Errorf("unexpected expansion set: %v", cands)
	}
}

func TestGenerateRanksSeedOverlapHigher(t *testing.T) {
	g := &Grammar{
		Key: "topical",
		Productions: []Production{
			{Template: "виноград это вкусно", Weight: 1.0},
			{Template: "погода сегодня хорошая", Weight: 1.0},
		},
	}
	cands := g.Generate([]string{"виноград"}, nil)
	if len(cands) != 2 {
		t.Fatalf("got %d candidates", len(cands))
	}
	if cands[0].Text != "виноград это вкусно" {
		t.Errorf("on-topic production must rank first: %v", cands)
	}
	if cands[0].Rank <= cands[1].Rank {
		t.Errorf("ranks not ordered: %v", cands)
	}
}

func TestGenerateRespectsVocabulary(t *testing.T) {
	g := &Grammar{
		Key:         "vocab",
		Productions: []Production{{Template: "а что насчет $seed?", Weight: 1.0}},
	}
	vocab := map[string]struct{}{"кошек": {}}
	cands := g.Generate([]string{"кошек", "ὲὲὲ"}, vocab)
	if len(cands) != 1 || cands[0].Text != "а что насчет кошек?" {
		t.Errorf("out-of-vocabulary seed must be skipped: %v", cands)
	}
}

func TestReadArtifactRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	grammars := []*Grammar{
		{Key: "a", Productions: []Production{{Template: "x", Weight: 1}}},
		{Key: "b", Productions: []Production{{Template: "y $seed", Weight: 2}}},
	}
	if err := WriteArtifact(&buf, grammars); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}

	got, err := ReadArtifact(&buf)
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d grammars", len(got))
	}
	if got["b"].Productions[0].Template != "y $seed" {
		t.Errorf("grammar b mangled: %+v", got["b"])
	}
}

func TestReadArtifactRejectsTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(3); err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode("only-key"); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadArtifact(&buf); err == nil {
		t.Errorf("expected error for truncated artifact")
	}
}
