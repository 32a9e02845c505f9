// Package oracle defines the contracts of the pretrained scoring and
// generation models the dialogue engine depends on. The engine never knows
// how a score is computed; it only relies on the input/output shapes and
// threshold semantics declared here. Production implementations call a
// model server (remote.go); tests substitute deterministic fakes.
package oracle

import (
	"context"
	"fmt"

	"go-dialog/internal/session"
)

// ModalityDetector classifies an utterance and reports grammatical person.
type ModalityDetector interface {
	DetectModality(ctx context.Context, text string) (session.Modality, int, error)
}

// IntentDetector labels an utterance with a discrete intent.
type IntentDetector interface {
	DetectIntent(ctx context.Context, text string) (string, error)
}

// Interpreter resolves ellipsis/anaphora against a context window and
// normalizes grammatical person.
type Interpreter interface {
	// Interpret rewrites the last phrase of the window into its full,
	// self-contained form. The window is ordered oldest first and always
	// ends with the phrase to resolve.
	Interpret(ctx context.Context, contextWindow []string) (string, error)
	// RequiresInterpretation reports whether the phrase is elliptical or
	// anaphoric enough to need resolution at all.
	RequiresInterpretation(ctx context.Context, text string) (bool, error)
	// NormalizePerson flips the grammatical person of the phrase into the
	// bot's frame of reference.
	NormalizePerson(ctx context.Context, text string) (string, error)
}

// Ranked is one scored candidate out of a similarity or relevancy query.
type Ranked struct {
	Text  string
	Score float64
}

// SynonymyDetector scores phrase equivalence. Scores above Threshold mean
// "same phrase, differently worded".
type SynonymyDetector interface {
	MostSimilar(ctx context.Context, query string, candidates []string, topK int) ([]Ranked, error)
	Threshold() float64
}

// RelevancyDetector ranks stored facts as evidence for a question.
type RelevancyDetector interface {
	MostRelevant(ctx context.Context, question string, premises []string, topK int) ([]Ranked, error)
}

// EnoughPremisesModel estimates the probability that the given premise set
// (possibly empty) suffices to answer the question.
type EnoughPremisesModel interface {
	EnoughPremises(ctx context.Context, premises []string, question string) (float64, error)
}

// AnswerGenerator synthesizes answer texts from weighted premises.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, premises []string, weights []float64, question string) ([]Ranked, error)
}

// FaqMatch is the FAQ service's best hit. A zero Score means no entry
// matched, which is a normal lookup miss, not an error.
type FaqMatch struct {
	Answer          string
	Score           float64
	MatchedQuestion string
}

// FaqService resolves a question against a curated Q/A base.
type FaqService interface {
	Lookup(ctx context.Context, question string) (FaqMatch, error)
}

// NoInformationModel produces the canned "I don't know" style reply for a
// question the bot has no evidence for.
type NoInformationModel interface {
	Fallback(ctx context.Context, question string) (string, error)
	// OrderNotUnderstood produces the reply for an imperative the bot
	// could not execute.
	OrderNotUnderstood(ctx context.Context, order string) (string, error)
}

// Part-of-speech tags used by the stem-overlap replica source. Only nouns
// and verbs contribute key stems.
const (
	PosNoun = "NOUN"
	PosVerb = "VERB"
)

// TaggedToken is one token with its part of speech.
type TaggedToken struct {
	Word string
	Pos  string
}

// Tagger performs part-of-speech tagging.
type Tagger interface {
	Tag(ctx context.Context, tokens []string) ([]TaggedToken, error)
}

// Failure wraps an error from an external model call. Any Failure is fatal
// to the current turn: the turn is abandoned rather than emitting a
// possibly inconsistent partial answer.
type Failure struct {
	Oracle string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("oracle %s failed: %v", f.Oracle, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Fail wraps err as a turn-fatal oracle failure, passing nil through.
func Fail(name string, err error) error {
	if err == nil {
		return nil
	}
	return &Failure{Oracle: name, Err: err}
}
