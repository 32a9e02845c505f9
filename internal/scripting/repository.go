package scripting

import (
	"math/rand"

	"go-dialog/internal/grammar"
)

// VerbalForm is a named slot-filling form: a sequence of questions the bot
// can walk through to collect structured values.
type VerbalForm struct {
	Name   string
	Fields []FormField
}

// FormField is one slot of a verbal form.
type FormField struct {
	Name     string
	Question string
}

// Scenario is a named scripted exchange: an ordered list of bot lines,
// optionally with its own smalltalk ruleset active while it runs.
type Scenario struct {
	Name      string
	Steps     []string
	Smalltalk []*SmalltalkRule
}

// Repository is the compiled scripting of one bot profile. It is built by
// the Loader in one piece and immutable afterwards, so concurrent readers
// across sessions need no synchronization.
type Repository struct {
	Greetings          []string
	Goodbyes           []string
	OrderNotUnderstood []string
	CommonPhrases      []string

	InsteadofRules []*Rule
	Story          *StoryRules
	Smalltalk      []*SmalltalkRule
	Comprehension  *ComprehensionTable
	Forms          []*VerbalForm
	Scenarios      []*Scenario

	// ReplicaGrammar is the bot-level free generation grammar, consulted
	// as the last replica source when no rule, common phrase or fact
	// produced a candidate. Optional.
	ReplicaGrammar *grammar.Grammar
}

// NewRepository returns an empty repository with its indexes initialized.
func NewRepository() *Repository {
	return &Repository{
		Story:         NewStoryRules(),
		Comprehension: NewComprehensionTable(),
	}
}

// SmalltalkByText returns the smalltalk rules matched by phrase similarity.
func (r *Repository) SmalltalkByText() []*SmalltalkRule {
	var out []*SmalltalkRule
	for _, rule := range r.Smalltalk {
		if rule.ConditionText != "" {
			out = append(out, rule)
		}
	}
	return out
}

// SmalltalkByIntent returns the smalltalk rules matched by intent equality.
func (r *Repository) SmalltalkByIntent() []*SmalltalkRule {
	var out []*SmalltalkRule
	for _, rule := range r.Smalltalk {
		if rule.ConditionIntent != "" {
			out = append(out, rule)
		}
	}
	return out
}

// PickGreeting draws a random greeting, "" when the pool is empty.
func (r *Repository) PickGreeting(rng *rand.Rand) string {
	return pick(r.Greetings, rng)
}

// PickGoodbye draws a random goodbye, "" when the pool is empty.
func (r *Repository) PickGoodbye(rng *rand.Rand) string {
	return pick(r.Goodbyes, rng)
}

// PickOrderNotUnderstood draws the canned reply for an unhandled order.
func (r *Repository) PickOrderNotUnderstood(rng *rand.Rand) string {
	return pick(r.OrderNotUnderstood, rng)
}

func pick(pool []string, rng *rand.Rand) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}
