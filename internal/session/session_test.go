package session

import "testing"

func human(text string, m Modality) *InterpretedPhrase {
	p := NewPhrase(text)
	p.SetModality(m, PersonUnknown)
	return p
}

func bot(text string) *InterpretedPhrase {
	p := NewPhrase(text)
	p.IsBot = true
	p.SetModality(ModalityAssertion, PersonUnknown)
	return p
}

func TestHistoryIsAppendOnlySnapshot(t *testing.T) {
	s := NewSession("vika", "ilya")
	s.AddToHistory(human("привет", ModalityAssertion))
	snap := s.History()
	s.AddToHistory(bot("привет!"))
	if len(snap) != 1 {
		t.Errorf("snapshot must not grow with the session, len=%d", len(snap))
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestModalityFixedAfterFirstSet(t *testing.T) {
	p := NewPhrase("ты кто?")
	p.SetModality(ModalityQuestion, PersonSecond)
	p.SetModality(ModalityAssertion, PersonFirst)
	if !p.IsQuestion() || p.Person() != PersonSecond {
		t.Errorf("second SetModality must be ignored: %v person=%d", p.Modality(), p.Person())
	}
}

func TestOutboundQueueFIFO(t *testing.T) {
	s := NewSession("vika", "ilya")
	s.PushOutbound("раз")
	s.PushOutbound("два")
	first, ok := s.PopOutbound()
	if !ok || first != "раз" {
		t.Errorf("PopOutbound = %q, %v", first, ok)
	}
	rest := s.DrainOutbound()
	if len(rest) != 1 || rest[0] != "два" {
		t.Errorf("DrainOutbound = %v", rest)
	}
	if _, ok := s.PopOutbound(); ok {
		t.Errorf("queue should be empty")
	}
}

func TestCountBotPhraseIgnoresHumanLines(t *testing.T) {
	s := NewSession("vika", "ilya")
	s.AddToHistory(human("я люблю кошек", ModalityAssertion))
	s.AddToHistory(bot("я люблю кошек"))
	if n := s.CountBotPhrase("я люблю кошек"); n != 1 {
		t.Errorf("CountBotPhrase = %d, want 1", n)
	}
}

func TestInterlocutorPhrasesNewestFirstWithGaps(t *testing.T) {
	s := NewSession("vika", "ilya")
	s.AddToHistory(human("я живу в москве", ModalityAssertion))
	s.AddToHistory(bot("здорово"))
	s.AddToHistory(human("ты любишь кошек?", ModalityQuestion))

	all := s.InterlocutorPhrases(true, true)
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].Text != "ты любишь кошек?" || all[0].TurnGap != 0 {
		t.Errorf("latest = %+v", all[0])
	}
	if all[1].Text != "я живу в москве" || all[1].TurnGap != 1 {
		t.Errorf("gap counts human turns only: %+v", all[1])
	}

	onlyAssertions := s.InterlocutorPhrases(false, true)
	if len(onlyAssertions) != 1 || onlyAssertions[0].Text != "я живу в москве" {
		t.Errorf("assertion filter = %+v", onlyAssertions)
	}
}

func TestRegistryReusesSessions(t *testing.T) {
	r := NewRegistry()
	a, existed := r.Get("vika", "ilya")
	if existed {
		t.Errorf("first Get must report a fresh session")
	}
	b, existed := r.Get("vika", "ilya")
	if !existed || a != b {
		t.Errorf("same keys must return the same session")
	}
	c, _ := r.Get("vika", "oleg")
	if c == a {
		t.Errorf("different interlocutors must not share a session")
	}
}
