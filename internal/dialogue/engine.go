package dialogue

import (
	"context"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"go-dialog/internal/facts"
	"go-dialog/internal/oracle"
	"go-dialog/internal/scripting"
	"go-dialog/internal/session"
	"go-dialog/internal/textutil"
)

// Control tokens recognized before interpretation.
const (
	tokenTraceOn  = "#traceon"
	tokenTraceOff = "#traceoff"
	tokenFacts    = "#facts"
)

// Config carries the tunable decision thresholds of the dialogue engine.
type Config struct {
	// PremiseThreshold is the minimum relevancy for a stored fact to be
	// used as an answer premise, and for the bot to be considered to
	// already know the answer to a candidate question.
	PremiseThreshold float64
	// FaqThreshold is the minimum FAQ match score for the FAQ answer to
	// displace a fact-derived answer.
	FaqThreshold float64
	// ComprehensionThreshold gates template translation of unrecognized
	// utterances into their canonical anchors.
	ComprehensionThreshold float64
	// FactSimilarityThreshold gates fact-based smalltalk seeds.
	FactSimilarityThreshold float64
	// SmalltalkRuleThreshold gates similarity-conditioned smalltalk rules.
	SmalltalkRuleThreshold float64
	// PremiseIsAnswer returns the best premise verbatim instead of
	// running the answer generator over it.
	PremiseIsAnswer bool
	// EnableSmalltalk switches the replica generator on.
	EnableSmalltalk bool
	// ForceQuestionAnswering treats every incoming phrase as a question.
	ForceQuestionAnswering bool
	// TurnFallback is uttered when an oracle fails mid-turn.
	TurnFallback string
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		PremiseThreshold:        0.6,
		FaqThreshold:            0.7,
		ComprehensionThreshold:  0.70,
		FactSimilarityThreshold: 0.20,
		SmalltalkRuleThreshold:  0.7,
		EnableSmalltalk:         true,
		TurnFallback:            "Извини, я отвлеклась. О чём мы говорили?",
	}
}

// Oracles bundles the language-model services the engine consults.
// Faq and Tagger are optional, the rest must be set.
type Oracles struct {
	Modality       oracle.ModalityDetector
	Intent         oracle.IntentDetector
	Interpreter    oracle.Interpreter
	Synonymy       oracle.SynonymyDetector
	Lexical        oracle.SynonymyDetector
	Relevancy      oracle.RelevancyDetector
	EnoughPremises oracle.EnoughPremisesModel
	AnswerGen      oracle.AnswerGenerator
	Faq            oracle.FaqService
	NoInfo         oracle.NoInformationModel
	Tagger         oracle.Tagger
}

// ExternalScripting is the aggregate collaborator consulted before the
// declarative rules. Implementations emit replies through say and report
// whether they handled the phrase.
type ExternalScripting interface {
	ApplyInsteadofRule(ctx context.Context, ses *session.Session, phrase *session.InterpretedPhrase, say func(string) error) (bool, error)
	GenerateAfterAnswer(ctx context.Context, ses *session.Session, phrase *session.InterpretedPhrase, lastAnswer string) (string, error)
}

// Engine is the turn controller. It owns the per-turn pipeline from raw
// interlocutor utterance to queued bot replies.
type Engine struct {
	botID    string
	cfg      Config
	or       Oracles
	ext      ExternalScripting
	registry *session.Registry
	facts    facts.Store
	repo     atomic.Pointer[scripting.Repository]
	rng      *rand.Rand
	trace    atomic.Bool
}

// NewEngine builds an engine over an already loaded rule repository.
// A nil rng falls back to a time-seeded source.
func NewEngine(botID string, repo *scripting.Repository, registry *session.Registry, store facts.Store, or Oracles, cfg Config, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = newLockedRand(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{
		botID:    botID,
		cfg:      cfg,
		or:       or,
		registry: registry,
		facts:    store,
		rng:      rng,
	}
	e.repo.Store(repo)
	return e
}

// SetExternalScripting installs the aggregate scripting collaborator.
func (e *Engine) SetExternalScripting(ext ExternalScripting) {
	e.ext = ext
}

// Repository returns the current rule repository.
func (e *Engine) Repository() *scripting.Repository {
	return e.repo.Load()
}

// SetRepository swaps in a freshly loaded repository. Callers swap only
// after a fully successful load, so readers never observe a partial set.
func (e *Engine) SetRepository(r *scripting.Repository) {
	e.repo.Store(r)
}

// BotID returns the identifier this engine speaks as.
func (e *Engine) BotID() string {
	return e.botID
}

// Tracing reports whether per-turn tracing is on.
func (e *Engine) Tracing() bool {
	return e.trace.Load()
}

func (e *Engine) tracef(format string, args ...any) {
	if e.trace.Load() {
		log.Printf("[Engine] "+format, args...)
	}
}

// StartConversation opens (or reuses) a session and greets the
// interlocutor when the session is fresh.
func (e *Engine) StartConversation(ctx context.Context, interlocutor string) error {
	ses, existed := e.registry.Get(e.botID, interlocutor)
	ses.Lock()
	defer ses.Unlock()
	if existed && ses.Len() > 0 {
		return nil
	}
	greeting := e.Repository().PickGreeting(e.rng)
	if greeting == "" {
		return nil
	}
	if err := e.say(ctx, ses, greeting); err != nil {
		log.Printf("[Engine] greeting failed: %v", err)
		e.emitFallback(ses)
	}
	return nil
}

// PopPhrase dequeues the next pending bot reply for the interlocutor.
func (e *Engine) PopPhrase(interlocutor string) (string, bool) {
	ses, _ := e.registry.Get(e.botID, interlocutor)
	ses.Lock()
	defer ses.Unlock()
	return ses.PopOutbound()
}

// DrainPhrases dequeues every pending bot reply for the interlocutor.
func (e *Engine) DrainPhrases(interlocutor string) []string {
	ses, _ := e.registry.Get(e.botID, interlocutor)
	ses.Lock()
	defer ses.Unlock()
	return ses.DrainOutbound()
}

// PushPhrase runs one full turn for a raw interlocutor utterance.
// internal marks phrases issued by scenario machinery rather than typed
// by the interlocutor; forceQuestion routes the phrase down the question
// branch regardless of detected modality.
//
// An oracle failure is terminal for the turn: it is logged, a safe
// fallback is uttered, and already committed history and facts stay as
// they are.
func (e *Engine) PushPhrase(ctx context.Context, interlocutor, raw string, internal, forceQuestion bool) error {
	ses, _ := e.registry.Get(e.botID, interlocutor)
	ses.Lock()
	defer ses.Unlock()

	canon := textutil.Canonize(raw)
	switch canon {
	case tokenTraceOn:
		e.trace.Store(true)
		log.Printf("[Engine] tracing enabled by %s", interlocutor)
		return nil
	case tokenTraceOff:
		e.trace.Store(false)
		log.Printf("[Engine] tracing disabled by %s", interlocutor)
		return nil
	case tokenFacts:
		return e.dumpFacts(ctx, ses)
	}

	if err := e.runTurn(ctx, ses, canon, internal, forceQuestion); err != nil {
		log.Printf("[Engine] turn failed for %s: %v", interlocutor, err)
		e.emitFallback(ses)
		return err
	}
	return nil
}

func (e *Engine) runTurn(ctx context.Context, ses *session.Session, canon string, internal, forceQuestion bool) error {
	phrase, err := e.interpretPhrase(ctx, ses, canon, internal)
	if err != nil {
		return err
	}
	if forceQuestion || e.cfg.ForceQuestionAnswering {
		phrase.ForceQuestion()
	}
	e.tracef("turn phrase=%q modality=%s person=%d", phrase.Text, phrase.Modality(), phrase.Person())

	// A second-person assertion ("ты умеешь петь") is really a question
	// about the bot, so it goes down the question branch.
	aboutBot := phrase.IsAssertion() && phrase.Person() == session.PersonSecond

	ses.AddToHistory(phrase)

	switch {
	case phrase.IsImperative():
		return e.handleImperative(ctx, ses, phrase)
	case phrase.IsQuestion() || aboutBot:
		return e.handleQuestion(ctx, ses, phrase)
	default:
		return e.handleAssertion(ctx, ses, phrase)
	}
}

func (e *Engine) handleImperative(ctx context.Context, ses *session.Session, phrase *session.InterpretedPhrase) error {
	res, err := e.applyRules(ctx, ses, phrase)
	if err != nil {
		return err
	}
	if res.Applied {
		return nil
	}
	text := e.Repository().PickOrderNotUnderstood(e.rng)
	if text == "" && e.or.NoInfo != nil {
		text, err = e.or.NoInfo.OrderNotUnderstood(ctx, phrase.Text)
		if err != nil {
			return oracle.Fail("order_not_understood", err)
		}
	}
	if text == "" {
		return nil
	}
	return e.say(ctx, ses, text)
}

func (e *Engine) handleQuestion(ctx context.Context, ses *session.Session, phrase *session.InterpretedPhrase) error {
	answers, err := e.buildAnswers(ctx, ses, phrase)
	if err != nil {
		return err
	}
	for _, a := range answers {
		e.tracef("answer %q confidence=%v", a.Text, a.Confidence)
		if err := e.say(ctx, ses, a.Text); err != nil {
			return err
		}
	}

	replicaDone := false
	if len(answers) > 0 && e.ext != nil {
		extra, err := e.ext.GenerateAfterAnswer(ctx, ses, phrase, answers[len(answers)-1].Text)
		if err != nil {
			return err
		}
		if extra != "" {
			if err := e.say(ctx, ses, extra); err != nil {
				return err
			}
			replicaDone = true
		}
	}
	if !replicaDone {
		return e.emitSmalltalk(ctx, ses)
	}
	return nil
}

func (e *Engine) handleAssertion(ctx context.Context, ses *session.Session, phrase *session.InterpretedPhrase) error {
	res, err := e.applyRules(ctx, ses, phrase)
	if err != nil {
		return err
	}
	if !res.Applied {
		fact := facts.Fact{
			Interlocutor: ses.Interlocutor,
			Text:         phrase.Text,
			Person:       facts.PersonThirdParty,
			Provenance:   facts.ProvenanceDialogue,
		}
		if err := e.facts.Append(ctx, fact); err != nil {
			return err
		}
		e.tracef("stored fact %q", phrase.Text)
	}
	if !res.Applied || !res.ReplicaEmitted {
		return e.emitSmalltalk(ctx, ses)
	}
	return nil
}

func (e *Engine) emitSmalltalk(ctx context.Context, ses *session.Session) error {
	replica, err := e.generateReplica(ctx, ses)
	if err != nil {
		return err
	}
	if replica == "" {
		return nil
	}
	return e.say(ctx, ses, replica)
}

// say classifies the bot utterance, commits it to history and queues it
// for delivery.
func (e *Engine) say(ctx context.Context, ses *session.Session, text string) error {
	modality, person, err := e.or.Modality.DetectModality(ctx, text)
	if err != nil {
		return oracle.Fail("modality", err)
	}
	p := session.NewPhrase(text)
	p.Text = textutil.Canonize(text)
	p.IsBot = true
	p.SetModality(modality, person)
	ses.AddToHistory(p)
	ses.PushOutbound(text)
	return nil
}

// emitFallback queues the safe fallback without touching any oracle, so a
// broken oracle never blocks the apology for itself.
func (e *Engine) emitFallback(ses *session.Session) {
	text := e.cfg.TurnFallback
	if text == "" {
		return
	}
	p := session.NewPhrase(text)
	p.Text = textutil.Canonize(text)
	p.IsBot = true
	p.SetModality(session.ModalityAssertion, session.PersonUnknown)
	ses.AddToHistory(p)
	ses.PushOutbound(text)
}

func (e *Engine) dumpFacts(ctx context.Context, ses *session.Session) error {
	list, err := e.facts.Enumerate(ctx, ses.Interlocutor)
	if err != nil {
		return err
	}
	for _, f := range list {
		ses.PushOutbound(f.Text)
	}
	return nil
}
