package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-dialog/internal/session"
)

// Remote implements every oracle contract against a model server speaking
// a small JSON protocol: POST <base>/<endpoint> with a JSON body, JSON
// reply. Each call is bounded by the client timeout; a timeout is that
// oracle's failure mode and aborts the turn like any other failure.
type Remote struct {
	base              string
	client            *http.Client
	synonymyThreshold float64
}

// NewRemote builds a model-server client. synonymyThreshold is the
// acceptance threshold the synonymy model was calibrated with.
func NewRemote(baseURL string, timeout time.Duration, synonymyThreshold float64) *Remote {
	return &Remote{
		base:              baseURL,
		client:            &http.Client{Timeout: timeout},
		synonymyThreshold: synonymyThreshold,
	}
}

func (r *Remote) post(ctx context.Context, endpoint string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.base+"/"+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (r *Remote) DetectModality(ctx context.Context, text string) (session.Modality, int, error) {
	var result struct {
		Modality string `json:"modality"`
		Person   int    `json:"person"`
	}
	if err := r.post(ctx, "modality", map[string]interface{}{"text": text}, &result); err != nil {
		return session.ModalityUnknown, session.PersonUnknown, err
	}
	return session.Modality(result.Modality), result.Person, nil
}

func (r *Remote) DetectIntent(ctx context.Context, text string) (string, error) {
	var result struct {
		Intent string `json:"intent"`
	}
	if err := r.post(ctx, "intent", map[string]interface{}{"text": text}, &result); err != nil {
		return "", err
	}
	return result.Intent, nil
}

func (r *Remote) Interpret(ctx context.Context, contextWindow []string) (string, error) {
	var result struct {
		Text string `json:"text"`
	}
	if err := r.post(ctx, "interpret", map[string]interface{}{"context": contextWindow}, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

func (r *Remote) RequiresInterpretation(ctx context.Context, text string) (bool, error) {
	var result struct {
		Required bool `json:"required"`
	}
	if err := r.post(ctx, "requires_interpretation", map[string]interface{}{"text": text}, &result); err != nil {
		return false, err
	}
	return result.Required, nil
}

func (r *Remote) NormalizePerson(ctx context.Context, text string) (string, error) {
	var result struct {
		Text string `json:"text"`
	}
	if err := r.post(ctx, "normalize_person", map[string]interface{}{"text": text}, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

type rankedResponse struct {
	Results []struct {
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	} `json:"results"`
}

func (rr rankedResponse) toRanked() []Ranked {
	out := make([]Ranked, 0, len(rr.Results))
	for _, item := range rr.Results {
		out = append(out, Ranked{Text: item.Text, Score: item.Score})
	}
	return out
}

func (r *Remote) MostSimilar(ctx context.Context, query string, candidates []string, topK int) ([]Ranked, error) {
	var result rankedResponse
	payload := map[string]interface{}{"query": query, "candidates": candidates, "top_k": topK}
	if err := r.post(ctx, "synonymy", payload, &result); err != nil {
		return nil, err
	}
	return result.toRanked(), nil
}

func (r *Remote) Threshold() float64 { return r.synonymyThreshold }

func (r *Remote) MostRelevant(ctx context.Context, question string, premises []string, topK int) ([]Ranked, error) {
	var result rankedResponse
	payload := map[string]interface{}{"question": question, "premises": premises, "top_k": topK}
	if err := r.post(ctx, "relevancy", payload, &result); err != nil {
		return nil, err
	}
	return result.toRanked(), nil
}

func (r *Remote) EnoughPremises(ctx context.Context, premises []string, question string) (float64, error) {
	var result struct {
		Probability float64 `json:"probability"`
	}
	payload := map[string]interface{}{"premises": premises, "question": question}
	if err := r.post(ctx, "enough_premises", payload, &result); err != nil {
		return 0, err
	}
	return result.Probability, nil
}

func (r *Remote) GenerateAnswer(ctx context.Context, premises []string, weights []float64, question string) ([]Ranked, error) {
	var result rankedResponse
	payload := map[string]interface{}{"premises": premises, "weights": weights, "question": question}
	if err := r.post(ctx, "generate_answer", payload, &result); err != nil {
		return nil, err
	}
	return result.toRanked(), nil
}

func (r *Remote) Lookup(ctx context.Context, question string) (FaqMatch, error) {
	var result struct {
		Answer   string  `json:"answer"`
		Score    float64 `json:"score"`
		Question string  `json:"question"`
	}
	if err := r.post(ctx, "faq", map[string]interface{}{"question": question}, &result); err != nil {
		return FaqMatch{}, err
	}
	return FaqMatch{Answer: result.Answer, Score: result.Score, MatchedQuestion: result.Question}, nil
}

func (r *Remote) Fallback(ctx context.Context, question string) (string, error) {
	var result struct {
		Text string `json:"text"`
	}
	if err := r.post(ctx, "no_information", map[string]interface{}{"question": question}, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

func (r *Remote) OrderNotUnderstood(ctx context.Context, order string) (string, error) {
	var result struct {
		Text string `json:"text"`
	}
	if err := r.post(ctx, "order_not_understood", map[string]interface{}{"order": order}, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

func (r *Remote) Tag(ctx context.Context, tokens []string) ([]TaggedToken, error) {
	var result struct {
		Tokens []struct {
			Word string `json:"word"`
			Pos  string `json:"pos"`
		} `json:"tokens"`
	}
	if err := r.post(ctx, "tag", map[string]interface{}{"tokens": tokens}, &result); err != nil {
		return nil, err
	}
	out := make([]TaggedToken, 0, len(result.Tokens))
	for _, tok := range result.Tokens {
		out = append(out, TaggedToken{Word: tok.Word, Pos: tok.Pos})
	}
	return out, nil
}
