// Package scripting holds the bot's declarative rule repository: insteadof
// rules, story rules, smalltalk rules, comprehension templates and canned
// phrase pools, all compiled once at load time and read-only afterwards.
package scripting

import (
	"context"
	"fmt"
	"math/rand"

	"go-dialog/internal/oracle"
	"go-dialog/internal/session"
	"go-dialog/internal/textutil"
)

// Condition is the compiled "if" part of a scripting rule. Exactly one
// selector is set:
//   - Intent matches by exact equality with the detected intent;
//   - RawText matches the canonized raw utterance exactly;
//   - Text matches the resolved utterance through the synonymy model.
type Condition struct {
	Intent  string
	Text    string
	RawText string
}

func (c Condition) validate() error {
	set := 0
	if c.Intent != "" {
		set++
	}
	if c.Text != "" {
		set++
	}
	if c.RawText != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("rule condition must set exactly one of intent/text/raw_text, got %d", set)
	}
	return nil
}

// IsEmpty reports a condition with no selector. Switch-form story rules
// fire on their preceding-utterance key alone, so their condition stays
// empty and matches any current phrase.
func (c Condition) IsEmpty() bool {
	return c.Intent == "" && c.Text == "" && c.RawText == ""
}

// Matches checks the condition against an interpreted phrase. Text
// conditions consult the synonymy model and accept scores at or above its
// threshold.
func (c Condition) Matches(ctx context.Context, phrase *session.InterpretedPhrase, syn oracle.SynonymyDetector) (bool, error) {
	switch {
	case c.IsEmpty():
		return true, nil
	case c.Intent != "":
		return phrase.Intent == c.Intent, nil
	case c.RawText != "":
		return textutil.Canonize(phrase.Raw) == textutil.Canonize(c.RawText), nil
	default:
		ranked, err := syn.MostSimilar(ctx, phrase.Text, []string{c.Text}, 1)
		if err != nil {
			return false, oracle.Fail("synonymy", err)
		}
		return len(ranked) > 0 && ranked[0].Score >= syn.Threshold(), nil
	}
}

// Action is the compiled "then" part. A rule either says one of its
// phrases or handles the turn silently.
type Action struct {
	Say    []string
	Silent bool
}

// Rule is one immutable condition/action pair. Insteadof rules fully
// substitute default turn handling when they fire; story rules additionally
// key on the preceding utterance (see StoryRules).
type Rule struct {
	Name string
	Cond Condition
	Act  Action
}

// Execute runs the action. say pushes one utterance to the current turn's
// output; the return value reports whether a replica was emitted.
func (r *Rule) Execute(rng *rand.Rand, say func(string)) bool {
	if r.Act.Silent || len(r.Act.Say) == 0 {
		return false
	}
	say(r.Act.Say[rng.Intn(len(r.Act.Say))])
	return true
}
