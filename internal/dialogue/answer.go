package dialogue

import (
	"context"
	"log"

	"go-dialog/internal/facts"
	"go-dialog/internal/oracle"
	"go-dialog/internal/session"
)

// Answer is one scored reply to a question.
type Answer struct {
	Text       string
	Confidence float64
}

// buildAnswers produces the replies for a question phrase.
//
// The ladder: try to answer from common sense alone (no premises), then
// from the most relevant stored fact, then let the FAQ displace a weak or
// missing fact answer, then fall back to rules, and as the last resort to
// the no-information phrase. A rule firing at the fallback step speaks
// through the session itself, so the returned slice is empty in that case.
func (e *Engine) buildAnswers(ctx context.Context, ses *session.Session, phrase *session.InterpretedPhrase) ([]Answer, error) {
	question := phrase.Text

	var faq oracle.FaqMatch
	if e.or.Faq != nil {
		var err error
		faq, err = e.or.Faq.Lookup(ctx, question)
		if err != nil {
			return nil, oracle.Fail("faq", err)
		}
	}

	var answers []Answer

	pEnough, err := e.or.EnoughPremises.EnoughPremises(ctx, nil, question)
	if err != nil {
		return nil, oracle.Fail("enough_premises", err)
	}
	if pEnough > 0.5 {
		// Answerable without any premise ("сколько будет 2 плюс 2").
		gen, err := e.or.AnswerGen.GenerateAnswer(ctx, nil, nil, question)
		if err != nil {
			return nil, oracle.Fail("generate_answer", err)
		}
		if len(gen) != 1 {
			log.Printf("[Engine] premise-free generation returned %d answers for %q, expected 1", len(gen), question)
		}
		if len(gen) > 5 {
			gen = gen[:5]
		}
		for _, g := range gen {
			answers = append(answers, Answer{Text: g.Text, Confidence: g.Score})
		}
	} else {
		stored, err := e.facts.Enumerate(ctx, ses.Interlocutor)
		if err != nil {
			return nil, err
		}
		premises := facts.Texts(stored)
		if len(premises) > 0 {
			ranked, err := e.or.Relevancy.MostRelevant(ctx, question, premises, 3)
			if err != nil {
				return nil, oracle.Fail("relevancy", err)
			}
			if len(ranked) > 0 && ranked[0].Score >= e.cfg.PremiseThreshold {
				best := ranked[0]
				e.tracef("premise %q relevancy=%v", best.Text, best.Score)
				if e.cfg.PremiseIsAnswer {
					answers = append(answers, Answer{Text: best.Text, Confidence: best.Score})
				} else {
					gen, err := e.or.AnswerGen.GenerateAnswer(ctx, []string{best.Text}, []float64{best.Score}, question)
					if err != nil {
						return nil, oracle.Fail("generate_answer", err)
					}
					for _, g := range gen {
						answers = append(answers, Answer{Text: g.Text, Confidence: g.Score})
					}
				}
			}
		}
	}

	if faq.Answer != "" {
		replace := len(answers) == 0 ||
			(faq.Score > answers[0].Confidence && faq.Score > e.cfg.FaqThreshold)
		if replace {
			e.tracef("faq answer %q score=%v displaces %d fact answers", faq.Answer, faq.Score, len(answers))
			answers = []Answer{{Text: faq.Answer, Confidence: faq.Score}}
		}
	}

	if len(answers) == 0 {
		res, err := e.applyRules(ctx, ses, phrase)
		if err != nil {
			return nil, err
		}
		if !res.Applied {
			text, err := e.or.NoInfo.Fallback(ctx, question)
			if err != nil {
				return nil, oracle.Fail("no_information", err)
			}
			if text != "" {
				answers = append(answers, Answer{Text: text, Confidence: 1.0})
			}
		}
	}

	return answers, nil
}
