package session

import (
	"sync"
)

// Session holds the per-(bot, interlocutor) conversation state: an
// append-only history of interpreted phrases and a FIFO of outbound bot
// utterances waiting to be delivered.
//
// A turn must hold the session lock for its whole duration: history append
// and fact storage are not commutative, so turns for the same session are
// serialized. Turns for distinct sessions run in parallel freely.
type Session struct {
	BotID        string
	Interlocutor string

	mu       sync.Mutex
	history  []*InterpretedPhrase
	outbound []string
}

// NewSession starts an empty conversation between botID and interlocutor.
func NewSession(botID, interlocutor string) *Session {
	return &Session{BotID: botID, Interlocutor: interlocutor}
}

// Lock serializes one turn. Unlock when the turn is fully emitted.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// AddToHistory appends a phrase. History order is call order; entries are
// never removed or rewritten.
func (s *Session) AddToHistory(p *InterpretedPhrase) {
	s.history = append(s.history, p)
}

// History returns the phrases in append order. The returned slice is a
// snapshot; the phrases themselves are shared and must not be mutated.
func (s *Session) History() []*InterpretedPhrase {
	out := make([]*InterpretedPhrase, len(s.history))
	copy(out, s.history)
	return out
}

// Len reports how many phrases the history holds.
func (s *Session) Len() int { return len(s.history) }

// Last returns the most recent phrase, or nil for an empty history.
func (s *Session) Last() *InterpretedPhrase {
	if len(s.history) == 0 {
		return nil
	}
	return s.history[len(s.history)-1]
}

// PushOutbound queues a bot utterance for delivery.
func (s *Session) PushOutbound(text string) {
	s.outbound = append(s.outbound, text)
}

// PopOutbound removes and returns the oldest pending utterance.
func (s *Session) PopOutbound() (string, bool) {
	if len(s.outbound) == 0 {
		return "", false
	}
	text := s.outbound[0]
	s.outbound = s.outbound[1:]
	return text, true
}

// DrainOutbound removes and returns all pending utterances in order.
func (s *Session) DrainOutbound() []string {
	out := s.outbound
	s.outbound = nil
	return out
}

// CountBotPhrase counts how many times the bot already said exactly text.
func (s *Session) CountBotPhrase(text string) int {
	n := 0
	for _, p := range s.history {
		if p.IsBot && p.Text == text {
			n++
		}
	}
	return n
}

// BotPhrases lists every utterance the bot emitted so far, oldest first.
func (s *Session) BotPhrases() []string {
	var out []string
	for _, p := range s.history {
		if p.IsBot {
			out = append(out, p.Text)
		}
	}
	return out
}

// TimedPhrase is an interlocutor utterance plus its distance from the end
// of the history measured in the interlocutor's own turns (0 = latest).
type TimedPhrase struct {
	Text    string
	TurnGap int
}

// InterlocutorPhrases returns the human's utterances, newest first, with
// their turn gaps. Questions and assertions are included per the flags.
func (s *Session) InterlocutorPhrases(questions, assertions bool) []TimedPhrase {
	var out []TimedPhrase
	gap := 0
	for i := len(s.history) - 1; i >= 0; i-- {
		p := s.history[i]
		if p.IsBot {
			continue
		}
		if (p.IsQuestion() && questions) || (!p.IsQuestion() && assertions) {
			out = append(out, TimedPhrase{Text: p.Text, TurnGap: gap})
		}
		gap++
	}
	return out
}

// LastInterlocutorUtterance returns the human's most recent phrase, nil if
// the human has not spoken yet.
func (s *Session) LastInterlocutorUtterance() *InterpretedPhrase {
	for i := len(s.history) - 1; i >= 0; i-- {
		if !s.history[i].IsBot {
			return s.history[i]
		}
	}
	return nil
}
