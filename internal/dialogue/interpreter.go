package dialogue

import (
	"context"

	"go-dialog/internal/oracle"
	"go-dialog/internal/session"
	"go-dialog/internal/textutil"
)

// interpretPhrase turns a canonized raw utterance into a fully classified
// phrase: modality and person are detected, short context-dependent
// utterances are rewritten into self-contained text, and grammatical
// person is normalized to the bot's point of view.
//
// Only externally issued phrases are candidates for context resolution;
// phrases synthesized by scenario machinery arrive already complete.
func (e *Engine) interpretPhrase(ctx context.Context, ses *session.Session, canon string, internal bool) (*session.InterpretedPhrase, error) {
	phrase := session.NewPhrase(canon)

	modality, person, err := e.or.Modality.DetectModality(ctx, canon)
	if err != nil {
		return nil, oracle.Fail("modality", err)
	}

	res := resolution{}
	if !internal {
		res, err = e.resolveInContext(ctx, ses, canon, modality)
		if err != nil {
			return nil, err
		}
	}

	text := canon
	if res.resolved() {
		e.tracef("interpretation (%s): %q -> %q", res.kind, canon, res.text)
		text, err = e.or.Interpreter.NormalizePerson(ctx, res.text)
		if err != nil {
			return nil, oracle.Fail("normalize_person", err)
		}
		// Intent is detected on the raw form: the rewrite can strip the
		// surface cues the intent model keys on.
		phrase.Intent, err = e.or.Intent.DetectIntent(ctx, canon)
		if err != nil {
			return nil, oracle.Fail("intent", err)
		}
	} else if !internal {
		// Unresolved external phrase: try the comprehension templates.
		anchor, err := e.translateReplica(ctx, canon)
		if err != nil {
			return nil, err
		}
		if anchor != "" {
			e.tracef("interpretation (%s): %q -> %q", resTemplateTranslated, canon, anchor)
			text = anchor
			res = resolution{kind: resTemplateTranslated, text: anchor}
			// The anchor can carry a different modality than the variant
			// that matched it.
			modality, person, err = e.or.Modality.DetectModality(ctx, anchor)
			if err != nil {
				return nil, oracle.Fail("modality", err)
			}
		}
	}

	if !res.resolved() {
		text, err = e.or.Interpreter.NormalizePerson(ctx, canon)
		if err != nil {
			return nil, oracle.Fail("normalize_person", err)
		}
	}
	if phrase.Intent == "" {
		phrase.Intent, err = e.or.Intent.DetectIntent(ctx, canon)
		if err != nil {
			return nil, oracle.Fail("intent", err)
		}
	}

	phrase.Text = text
	phrase.SetModality(modality, person)
	return phrase, nil
}

// resolveInContext rewrites short context-dependent utterances.
//
// Two windows are probed. A human question arriving two turns after a
// human question is resolved against that question and whatever turn
// followed it, which covers follow-ups like "а виноград?". A non-question
// arriving right after a bot utterance is resolved against that utterance
// alone, which covers short answers like "да" or "двадцать".
func (e *Engine) resolveInContext(ctx context.Context, ses *session.Session, canon string, modality session.Modality) (resolution, error) {
	history := ses.History()
	isQuestion := modality == session.ModalityQuestion

	if isQuestion && len(history) >= 2 {
		prev := history[len(history)-2]
		last := history[len(history)-1]
		if !prev.IsBot && prev.IsQuestion() {
			need, err := e.or.Interpreter.RequiresInterpretation(ctx, canon)
			if err != nil {
				return resolution{}, oracle.Fail("requires_interpretation", err)
			}
			if need {
				window := []string{prev.Raw, last.Raw, canon}
				text, err := e.or.Interpreter.Interpret(ctx, window)
				if err != nil {
					return resolution{}, oracle.Fail("interpret", err)
				}
				if text != "" {
					return resolution{kind: resAnaphora, text: text}, nil
				}
			}
		}
	}

	if !isQuestion && len(history) >= 1 {
		last := history[len(history)-1]
		if last.IsBot {
			need, err := e.or.Interpreter.RequiresInterpretation(ctx, canon)
			if err != nil {
				return resolution{}, oracle.Fail("requires_interpretation", err)
			}
			if need {
				window := []string{last.Text, canon}
				text, err := e.or.Interpreter.Interpret(ctx, window)
				if err != nil {
					return resolution{}, oracle.Fail("interpret", err)
				}
				if text != "" {
					return resolution{kind: resEllipsis, text: text}, nil
				}
			}
		}
	}

	return resolution{}, nil
}

// translateReplica maps an utterance onto the anchor of the closest
// comprehension template, or returns "" when nothing matches well enough
// or the anchor would be a no-op rewrite.
func (e *Engine) translateReplica(ctx context.Context, canon string) (string, error) {
	repo := e.Repository()
	variants := repo.Comprehension.Variants()
	if len(variants) == 0 {
		return "", nil
	}
	ranked, err := e.or.Synonymy.MostSimilar(ctx, canon, variants, 1)
	if err != nil {
		return "", oracle.Fail("synonymy", err)
	}
	if len(ranked) == 0 || ranked[0].Score <= e.cfg.ComprehensionThreshold {
		return "", nil
	}
	anchor, ok := repo.Comprehension.AnchorFor(ranked[0].Text)
	if !ok || textutil.Canonize(anchor) == canon {
		return "", nil
	}
	return anchor, nil
}
