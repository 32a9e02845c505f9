package textutil

import "testing"

func TestCanonize(t *testing.T) {
	got := Canonize("  Меня   зовут Илья  ")
	if got != "меня зовут илья" {
		t.Errorf("Canonize = %q", got)
	}
	if Canonize("А виноград?") != "а виноград?" {
		t.Errorf("question mark must survive canonization")
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Кошки ловят мышей, правда?")
	want := []string{"кошки", "ловят", "мышей", "правда"}
	if len(tokens) != len(want) {
		t.Fatalf("got %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestKeyStemsSkipsShortTokens(t *testing.T) {
	stems := KeyStems([]string{"кот", "собака"})
	if _, ok := stems["соба"]; !ok {
		t.Errorf("expected stem for собака, got %v", stems)
	}
	if len(stems) != 1 {
		t.Errorf("short token must not produce a stem: %v", stems)
	}
}

func TestStemHits(t *testing.T) {
	stems := KeyStems([]string{"виноград"})
	hits := StemHits(Tokenize("я люблю виноградный сок"), stems)
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
}

func TestEndsWithQuestionMark(t *testing.T) {
	if !EndsWithQuestionMark("ты любишь кошек?  ") {
		t.Errorf("trailing spaces must not hide the question mark")
	}
	if EndsWithQuestionMark("я люблю кошек") {
		t.Errorf("assertion misread as question")
	}
}
