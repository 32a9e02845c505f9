package dialogue

import (
	"context"

	"go-dialog/internal/scripting"
	"go-dialog/internal/session"
)

// InsteadofResult reports how rule matching ended. Applied means some rule
// substituted the default turn handling; ReplicaEmitted distinguishes
// rules that spoke from rules that handled the turn silently.
type InsteadofResult struct {
	Applied        bool
	ReplicaEmitted bool
}

// applyRules runs the full rule cascade for the current phrase:
//
//  1. the external scripting collaborator, which can run arbitrary code;
//  2. story rules, looked up by the preceding utterance;
//  3. the ordered insteadof rule list.
//
// The first rule whose condition accepts the phrase wins and ends the
// scan, so rule order in the scripts is significant.
func (e *Engine) applyRules(ctx context.Context, ses *session.Session, phrase *session.InterpretedPhrase) (InsteadofResult, error) {
	if e.ext != nil {
		applied, err := e.ext.ApplyInsteadofRule(ctx, ses, phrase, func(text string) error {
			return e.say(ctx, ses, text)
		})
		if err != nil {
			return InsteadofResult{}, err
		}
		if applied {
			e.tracef("external scripting handled %q", phrase.Text)
			return InsteadofResult{Applied: true, ReplicaEmitted: true}, nil
		}
	}

	if res, err := e.applyStoryRules(ctx, ses, phrase); err != nil || res.Applied {
		return res, err
	}

	repo := e.Repository()
	for _, rule := range repo.InsteadofRules {
		ok, err := rule.Cond.Matches(ctx, phrase, e.or.Synonymy)
		if err != nil {
			return InsteadofResult{}, err
		}
		if ok {
			return e.executeRule(ctx, ses, rule)
		}
	}
	return InsteadofResult{}, nil
}

// applyStoryRules consults the preceding-utterance indexes: the bucket is
// chosen by who spoke last before the current phrase, then scanned in
// registration order.
func (e *Engine) applyStoryRules(ctx context.Context, ses *session.Session, phrase *session.InterpretedPhrase) (InsteadofResult, error) {
	history := ses.History()
	// The current phrase is already committed, the preceding utterance is
	// one step further back.
	if len(history) < 2 {
		return InsteadofResult{}, nil
	}
	prev := history[len(history)-2]

	story := e.Repository().Story
	var bucket []*scripting.Rule
	if prev.IsBot {
		bucket = story.ByBotPhrase(prev.Text)
	} else {
		bucket = story.ByHumanPhrase(prev.Text)
	}
	for _, rule := range bucket {
		ok, err := rule.Cond.Matches(ctx, phrase, e.or.Synonymy)
		if err != nil {
			return InsteadofResult{}, err
		}
		if ok {
			return e.executeRule(ctx, ses, rule)
		}
	}
	return InsteadofResult{}, nil
}

func (e *Engine) executeRule(ctx context.Context, ses *session.Session, rule *scripting.Rule) (InsteadofResult, error) {
	e.tracef("rule %q fired", rule.Name)
	var sayErr error
	emitted := rule.Execute(e.rng, func(text string) {
		if sayErr == nil {
			sayErr = e.say(ctx, ses, text)
		}
	})
	if sayErr != nil {
		return InsteadofResult{}, sayErr
	}
	return InsteadofResult{Applied: true, ReplicaEmitted: emitted}, nil
}
