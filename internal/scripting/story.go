package scripting

import "go-dialog/internal/textutil"

// StoryRules indexes rules by the exact preceding utterance: one mapping
// keyed by the bot's previous line, one by the human's. Lookup picks the
// bucket in O(1); matching scans inside the bucket in insertion order, so
// rule files stay cheap even with many distinct keys.
type StoryRules struct {
	byBotKey   map[string][]*Rule
	byHumanKey map[string][]*Rule
	botKeys    []string
	humanKeys  []string
}

func NewStoryRules() *StoryRules {
	return &StoryRules{
		byBotKey:   make(map[string][]*Rule),
		byHumanKey: make(map[string][]*Rule),
	}
}

// AddBotKeyed registers a rule fired by the bot's preceding utterance.
// Duplicate keys accumulate; registration order is preserved per bucket.
func (s *StoryRules) AddBotKeyed(keyPhrase string, rule *Rule) {
	k := textutil.Canonize(keyPhrase)
	if _, ok := s.byBotKey[k]; !ok {
		s.botKeys = append(s.botKeys, k)
	}
	s.byBotKey[k] = append(s.byBotKey[k], rule)
}

// AddHumanKeyed registers a rule fired by the human's preceding utterance.
func (s *StoryRules) AddHumanKeyed(keyPhrase string, rule *Rule) {
	k := textutil.Canonize(keyPhrase)
	if _, ok := s.byHumanKey[k]; !ok {
		s.humanKeys = append(s.humanKeys, k)
	}
	s.byHumanKey[k] = append(s.byHumanKey[k], rule)
}

// ByBotPhrase returns the rules keyed on the given preceding bot utterance.
func (s *StoryRules) ByBotPhrase(phrase string) []*Rule {
	return s.byBotKey[textutil.Canonize(phrase)]
}

// ByHumanPhrase returns the rules keyed on the given preceding human utterance.
func (s *StoryRules) ByHumanPhrase(phrase string) []*Rule {
	return s.byHumanKey[textutil.Canonize(phrase)]
}

// Len counts registered rules across both indexes.
func (s *StoryRules) Len() int {
	n := 0
	for _, bucket := range s.byBotKey {
		n += len(bucket)
	}
	for _, bucket := range s.byHumanKey {
		n += len(bucket)
	}
	return n
}
