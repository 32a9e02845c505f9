package dialogue

import (
	"context"
	"math"
	"strings"

	"go-dialog/internal/facts"
	"go-dialog/internal/oracle"
	"go-dialog/internal/scripting"
	"go-dialog/internal/session"
	"go-dialog/internal/textutil"
)

// replicaCandidate is one potential smalltalk utterance with its sampling
// weight and the source it came from (for tracing).
type replicaCandidate struct {
	text   string
	weight float64
	source string
}

// generateReplica picks the bot's conversational follow-up, "" when no
// candidate survives. Candidate sources, in strict precedence:
//
//	a) smalltalk rules conditioned on phrase similarity;
//	b) smalltalk rules conditioned on the detected intent;
//	c) common phrases seeded by the human's key stems;
//	d) stored facts echoing the human's topic;
//	e) the bot-level replica grammar, expanded freely against the seed.
//
// Later sources are probed only when earlier ones produced nothing. The
// survivors are weighted-sampled, never argmaxed, so the bot does not
// repeat itself deterministically.
func (e *Engine) generateReplica(ctx context.Context, ses *session.Session) (string, error) {
	if !e.cfg.EnableSmalltalk {
		return "", nil
	}
	seeds := ses.InterlocutorPhrases(true, true)
	if len(seeds) == 0 {
		return "", nil
	}
	seed := seeds[0]
	decay := math.Exp(-float64(seed.TurnGap))

	cands, matched, err := e.textRuleCandidates(ctx, ses, seed, decay)
	if err != nil {
		return "", err
	}
	if !matched {
		cands, matched, err = e.intentRuleCandidates(ctx, ses, decay)
		if err != nil {
			return "", err
		}
	}
	if !matched {
		cands, err = e.seedCandidates(ctx, ses, seed.Text, decay)
		if err != nil {
			return "", err
		}
		if len(cands) == 0 {
			cands = e.freeGrammarCandidates(ses, seed.Text)
		}
	}

	survivors, err := e.filterCandidates(ctx, ses, cands)
	if err != nil {
		return "", err
	}
	if len(survivors) == 0 {
		return "", nil
	}

	weights := make([]float64, len(survivors))
	for i, c := range survivors {
		e.tracef("replica candidate (%s) %q weight=%v", c.source, c.text, c.weight)
		weights[i] = c.weight
	}
	idx := sampleWeighted(e.rng, weights)
	if idx < 0 {
		return "", nil
	}
	return survivors[idx].text, nil
}

// textRuleCandidates matches the human's latest phrase against the
// similarity-conditioned smalltalk rules.
func (e *Engine) textRuleCandidates(ctx context.Context, ses *session.Session, seed session.TimedPhrase, decay float64) ([]replicaCandidate, bool, error) {
	rules := e.Repository().SmalltalkByText()
	if len(rules) == 0 {
		return nil, false, nil
	}
	conditions := make([]string, len(rules))
	byCondition := make(map[string]*scripting.SmalltalkRule, len(rules))
	for i, r := range rules {
		conditions[i] = r.ConditionText
		byCondition[r.ConditionText] = r
	}
	ranked, err := e.or.Synonymy.MostSimilar(ctx, seed.Text, conditions, 1)
	if err != nil {
		return nil, false, oracle.Fail("synonymy", err)
	}
	if len(ranked) == 0 || ranked[0].Score < e.cfg.SmalltalkRuleThreshold {
		return nil, false, nil
	}
	rule := byCondition[ranked[0].Text]
	if rule == nil {
		return nil, false, nil
	}
	cands, err := e.expandRule(ctx, ses, rule, seed.Text, decay)
	return cands, true, err
}

// intentRuleCandidates matches the human's latest utterance intent against
// the intent-conditioned smalltalk rules.
func (e *Engine) intentRuleCandidates(ctx context.Context, ses *session.Session, decay float64) ([]replicaCandidate, bool, error) {
	last := ses.LastInterlocutorUtterance()
	if last == nil || last.Intent == "" {
		return nil, false, nil
	}
	for _, rule := range e.Repository().SmalltalkByIntent() {
		if rule.ConditionIntent != last.Intent {
			continue
		}
		cands, err := e.expandRule(ctx, ses, rule, last.Text, decay)
		return cands, true, err
	}
	return nil, false, nil
}

// expandRule turns one matched smalltalk rule into candidates. A literal
// rule contributes its whole answer pool; a generator rule contributes a
// single utterance sampled by rank from the grammar's fresh expansions.
func (e *Engine) expandRule(ctx context.Context, ses *session.Session, rule *scripting.SmalltalkRule, seedText string, decay float64) ([]replicaCandidate, error) {
	rel := e.discourseRelevance(seedText)
	if !rule.IsGenerator() {
		var out []replicaCandidate
		for _, answer := range rule.Answers {
			out = append(out, replicaCandidate{text: answer, weight: rel * decay, source: "rule"})
		}
		return out, nil
	}

	generated := rule.Grammar.Generate(textutil.Tokenize(seedText), nil)
	if len(generated) > 50 {
		generated = generated[:50]
	}
	var fresh []replicaCandidate
	var ranks []float64
	for _, g := range generated {
		if ses.CountBotPhrase(g.Text) > 0 {
			continue
		}
		fresh = append(fresh, replicaCandidate{text: g.Text, weight: g.Rank * rel * decay, source: "grammar"})
		ranks = append(ranks, g.Rank)
	}
	idx := sampleWeighted(e.rng, ranks)
	if idx < 0 {
		return nil, nil
	}
	return []replicaCandidate{fresh[idx]}, nil
}

// freeGrammarCandidates is the last-resort source: the bot-level replica
// grammar expanded against the seed, top expansions by rank. The central
// novelty and known-answer filters still apply downstream.
func (e *Engine) freeGrammarCandidates(ses *session.Session, seedText string) []replicaCandidate {
	g := e.Repository().ReplicaGrammar
	if g == nil {
		return nil
	}
	rel := e.discourseRelevance(seedText)
	generated := g.Generate(textutil.Tokenize(seedText), nil)
	if len(generated) > 5 {
		generated = generated[:5]
	}
	var out []replicaCandidate
	for _, c := range generated {
		if ses.CountBotPhrase(c.Text) > 0 {
			continue
		}
		out = append(out, replicaCandidate{text: c.Text, weight: c.Rank * rel, source: "replica_grammar"})
	}
	return out
}

// seedCandidates builds candidates from the common phrase pool and from
// stored facts, both keyed by the noun and verb stems of the human's
// latest phrase.
func (e *Engine) seedCandidates(ctx context.Context, ses *session.Session, seedText string, decay float64) ([]replicaCandidate, error) {
	stems, err := e.keyStems(ctx, seedText)
	if err != nil {
		return nil, err
	}
	if len(stems) == 0 {
		return nil, nil
	}
	rel := e.discourseRelevance(seedText)

	var out []replicaCandidate

	if best := bestStemMatches(e.Repository().CommonPhrases, stems, seedText); len(best) > 0 {
		ranked, err := e.or.Lexical.MostSimilar(ctx, seedText, best, 1)
		if err != nil {
			return nil, oracle.Fail("lexical_similarity", err)
		}
		if len(ranked) > 0 && ranked[0].Score > 0 {
			out = append(out, replicaCandidate{
				text:   ranked[0].Text,
				weight: ranked[0].Score * rel * decay,
				source: "common_phrase",
			})
		}
	}

	stored, err := e.facts.Enumerate(ctx, ses.Interlocutor)
	if err != nil {
		return nil, err
	}
	if texts := bestStemMatches(facts.Texts(stored), stems, seedText); len(texts) > 0 {
		ranked, err := e.or.Lexical.MostSimilar(ctx, seedText, texts, 1)
		if err != nil {
			return nil, oracle.Fail("lexical_similarity", err)
		}
		if len(ranked) > 0 && ranked[0].Score > e.cfg.FactSimilarityThreshold {
			out = append(out, replicaCandidate{
				text:   ranked[0].Text,
				weight: ranked[0].Score * rel * decay,
				source: "fact",
			})
		}
	}

	return out, nil
}

// keyStems extracts the stems of the nouns and verbs in the phrase. When
// no tagger is configured every token contributes its stem.
func (e *Engine) keyStems(ctx context.Context, text string) (map[string]struct{}, error) {
	tokens := textutil.Tokenize(text)
	if e.or.Tagger == nil {
		return textutil.KeyStems(tokens), nil
	}
	tagged, err := e.or.Tagger.Tag(ctx, tokens)
	if err != nil {
		return nil, oracle.Fail("tagger", err)
	}
	var content []string
	for _, t := range tagged {
		if t.Pos == oracle.PosNoun || t.Pos == oracle.PosVerb {
			content = append(content, t.Word)
		}
	}
	return textutil.KeyStems(content), nil
}

// bestStemMatches keeps the phrases sharing the most key stems with the
// seed, excluding the seed itself. One shared stem is the entry bar.
func bestStemMatches(pool []string, stems map[string]struct{}, seedText string) []string {
	bestScore := 0
	var best []string
	for _, p := range pool {
		if strings.EqualFold(p, seedText) {
			continue
		}
		score := textutil.StemHits(textutil.Tokenize(p), stems)
		if score < 1 || score < bestScore {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = best[:0]
		}
		best = append(best, p)
	}
	return best
}

// filterCandidates drops candidates the bot has effectively already said
// and questions the bot could answer itself from stored facts.
func (e *Engine) filterCandidates(ctx context.Context, ses *session.Session, cands []replicaCandidate) ([]replicaCandidate, error) {
	var factTexts []string
	factsLoaded := false

	var out []replicaCandidate
	for _, c := range cands {
		uttered, err := e.botAlreadySaid(ctx, ses, c.text)
		if err != nil {
			return nil, err
		}
		if uttered {
			e.tracef("replica %q dropped: already uttered", c.text)
			continue
		}
		if textutil.EndsWithQuestionMark(c.text) {
			if !factsLoaded {
				stored, err := e.facts.Enumerate(ctx, ses.Interlocutor)
				if err != nil {
					return nil, err
				}
				factTexts = facts.Texts(stored)
				factsLoaded = true
			}
			known, err := e.botKnowsAnswer(ctx, c.text, factTexts)
			if err != nil {
				return nil, err
			}
			if known {
				e.tracef("replica %q dropped: answer already known", c.text)
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// botAlreadySaid checks novelty: an exact repeat or a close paraphrase of
// anything the bot has said in this session disqualifies the candidate.
func (e *Engine) botAlreadySaid(ctx context.Context, ses *session.Session, text string) (bool, error) {
	if ses.CountBotPhrase(text) > 0 {
		return true, nil
	}
	prior := ses.BotPhrases()
	if len(prior) == 0 {
		return false, nil
	}
	ranked, err := e.or.Synonymy.MostSimilar(ctx, textutil.Canonize(text), prior, 1)
	if err != nil {
		return false, oracle.Fail("synonymy", err)
	}
	return len(ranked) > 0 && ranked[0].Score >= e.or.Synonymy.Threshold(), nil
}

// botKnowsAnswer reports whether the stored facts already answer the
// candidate question well enough that asking it would be silly.
func (e *Engine) botKnowsAnswer(ctx context.Context, question string, factTexts []string) (bool, error) {
	if len(factTexts) == 0 {
		return false, nil
	}
	ranked, err := e.or.Relevancy.MostRelevant(ctx, question, factTexts, 1)
	if err != nil {
		return false, oracle.Fail("relevancy", err)
	}
	return len(ranked) > 0 && ranked[0].Score >= e.cfg.PremiseThreshold, nil
}

// discourseRelevance weighs a candidate topic against the wider
// conversation. Uniform for now.
func (e *Engine) discourseRelevance(string) float64 {
	return 1.0
}
