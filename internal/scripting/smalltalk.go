package scripting

import (
	"fmt"

	"go-dialog/internal/grammar"
)

// SmalltalkRule produces a conversational follow-up, not an answer. Its
// condition is either a literal phrase (matched by similarity) or an
// intent label (matched exactly); its output is either a literal answer
// pool or a generative grammar bound by key after load.
type SmalltalkRule struct {
	ConditionText   string
	ConditionIntent string

	Answers    []string
	GrammarKey string
	Grammar    *grammar.Grammar
}

// IsGenerator reports whether the rule generates through a grammar rather
// than drawing from its literal pool.
func (r *SmalltalkRule) IsGenerator() bool { return r.Grammar != nil }

func (r *SmalltalkRule) validate() error {
	if (r.ConditionText == "") == (r.ConditionIntent == "") {
		return fmt.Errorf("smalltalk rule must set exactly one of text/intent condition")
	}
	if (len(r.Answers) == 0) == (r.GrammarKey == "") {
		return fmt.Errorf("smalltalk rule must have either literal answers or a grammar key")
	}
	return nil
}

// bindGrammar attaches the precompiled grammar carrying the rule's key.
// A generator rule whose key is missing from the artifact fails the load.
func (r *SmalltalkRule) bindGrammar(grammars map[string]*grammar.Grammar) error {
	if r.GrammarKey == "" {
		return nil
	}
	g, ok := grammars[r.GrammarKey]
	if !ok {
		return fmt.Errorf("no compiled grammar for key %q", r.GrammarKey)
	}
	r.Grammar = g
	return nil
}
