package dialogue

import (
	"context"
	"sort"
	"strings"

	"go-dialog/internal/oracle"
	"go-dialog/internal/session"
)

// fakeOracle is a deterministic stand-in for every model contract. Scores
// come from explicit pair maps; everything unlisted scores zero.
type fakeOracle struct {
	persons     map[string]int
	intents     map[string]string
	needsInterp map[string]bool
	interpret   map[string]string // key: window joined with "\x00"
	normalize   map[string]string
	synScores   map[[2]string]float64
	relScores   map[[2]string]float64
	enough      map[string]float64
	answers     map[string][]oracle.Ranked
	faq         map[string]oracle.FaqMatch
	threshold   float64

	failModality bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		persons:     map[string]int{},
		intents:     map[string]string{},
		needsInterp: map[string]bool{},
		interpret:   map[string]string{},
		normalize:   map[string]string{},
		synScores:   map[[2]string]float64{},
		relScores:   map[[2]string]float64{},
		enough:      map[string]float64{},
		answers:     map[string][]oracle.Ranked{},
		faq:         map[string]oracle.FaqMatch{},
		threshold:   0.7,
	}
}

var imperativeMarkers = []string{"расскажи", "прекрати", "спой", "замолчи"}

func (f *fakeOracle) DetectModality(ctx context.Context, text string) (session.Modality, int, error) {
	if f.failModality {
		return session.ModalityUnknown, 0, errAlwaysDown
	}
	person := f.persons[text]
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		return session.ModalityQuestion, person, nil
	}
	for _, m := range imperativeMarkers {
		if strings.Contains(text, m) {
			return session.ModalityImperative, person, nil
		}
	}
	return session.ModalityAssertion, person, nil
}

func (f *fakeOracle) DetectIntent(ctx context.Context, text string) (string, error) {
	return f.intents[text], nil
}

func (f *fakeOracle) RequiresInterpretation(ctx context.Context, text string) (bool, error) {
	return f.needsInterp[text], nil
}

func (f *fakeOracle) Interpret(ctx context.Context, window []string) (string, error) {
	return f.interpret[strings.Join(window, "\x00")], nil
}

func (f *fakeOracle) NormalizePerson(ctx context.Context, text string) (string, error) {
	if out, ok := f.normalize[text]; ok {
		return out, nil
	}
	return text, nil
}

func (f *fakeOracle) MostSimilar(ctx context.Context, query string, candidates []string, topK int) ([]oracle.Ranked, error) {
	ranked := make([]oracle.Ranked, 0, len(candidates))
	for _, cand := range candidates {
		score := f.synScores[[2]string{query, cand}]
		if cand == query {
			score = 1.0
		}
		ranked = append(ranked, oracle.Ranked{Text: cand, Score: score})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

func (f *fakeOracle) Threshold() float64 { return f.threshold }

func (f *fakeOracle) MostRelevant(ctx context.Context, question string, premises []string, topK int) ([]oracle.Ranked, error) {
	ranked := make([]oracle.Ranked, 0, len(premises))
	for _, p := range premises {
		ranked = append(ranked, oracle.Ranked{Text: p, Score: f.relScores[[2]string{question, p}]})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

func (f *fakeOracle) EnoughPremises(ctx context.Context, premises []string, question string) (float64, error) {
	return f.enough[question], nil
}

func (f *fakeOracle) GenerateAnswer(ctx context.Context, premises []string, weights []float64, question string) ([]oracle.Ranked, error) {
	key := question
	if len(premises) > 0 {
		key = question + "\x00" + premises[0]
	}
	return f.answers[key], nil
}

func (f *fakeOracle) Lookup(ctx context.Context, question string) (oracle.FaqMatch, error) {
	return f.faq[question], nil
}

func (f *fakeOracle) Fallback(ctx context.Context, question string) (string, error) {
	return "хороший вопрос, но я не знаю", nil
}

func (f *fakeOracle) OrderNotUnderstood(ctx context.Context, order string) (string, error) {
	return "не поняла, что нужно сделать", nil
}

type alwaysDownError struct{}

func (alwaysDownError) Error() string { return "model server unreachable" }

var errAlwaysDown = alwaysDownError{}

func (f *fakeOracle) oracles() Oracles {
	return Oracles{
		Modality:       f,
		Intent:         f,
		Interpreter:    f,
		Synonymy:       f,
		Lexical:        f,
		Relevancy:      f,
		EnoughPremises: f,
		AnswerGen:      f,
		Faq:            f,
		NoInfo:         f,
	}
}
