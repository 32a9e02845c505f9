// Package facts stores the bot's knowledge base: plain-text statements
// usable as premises when answering questions. Facts are append-only per
// interlocutor; this layer never mutates or evicts them.
package facts

import (
	"context"
	"time"
)

// Subject-person tags. The turn controller stores dialogue assertions with
// PersonThirdParty by default; facts about the bot itself come only from
// its profile, never from the interlocutor (write protection).
const (
	PersonFirst      = "1"
	PersonSecond     = "2"
	PersonThirdParty = "3"
)

// ProvenanceDialogue marks facts learned from the running conversation.
const ProvenanceDialogue = "--from dialogue--"

// Fact is one stored statement.
type Fact struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Interlocutor string    `json:"interlocutor" gorm:"index"`
	Text         string    `json:"text"`
	Person       string    `json:"person"`
	Provenance   string    `json:"provenance"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Store is the fact storage collaborator.
type Store interface {
	// Append adds a fact for the interlocutor. Append order is preserved
	// by Enumerate.
	Append(ctx context.Context, fact Fact) error
	// Enumerate returns every fact stored for the interlocutor, oldest
	// first. An empty result is normal.
	Enumerate(ctx context.Context, interlocutor string) ([]Fact, error)
}

// Texts projects facts onto their statement texts, preserving order.
func Texts(list []Fact) []string {
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.Text
	}
	return out
}
