package corrective

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"corrective-rag-be/pkg/embedding"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/relevance"
	"corrective-rag-be/pkg/rag/retrieve"
	"corrective-rag-be/pkg/rag/rewrite"
)

// scriptedLLM answers by prompt content: relevance prompts score by the
// document text they quote, rewrite prompts return a fixed reformulation.
type scriptedLLM struct{}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "doc-strong"):
		return `{"relevance_score": 0.9, "reason": "match"}`, nil
	case strings.Contains(prompt, "doc-weak"):
		return `{"relevance_score": 0.2, "reason": "off topic"}`, nil
	case strings.Contains(prompt, "did not return sufficiently relevant results"):
		return `{"strategy": "synonym_expansion", "rewritten_query": "확장된 질문", "changes_made": "expanded"}`, nil
	default:
		return `{}`, nil
	}
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

// fakeSearcher returns a scripted result set per retrieval round.
type fakeSearcher struct {
	rounds [][]retrieve.ScoredChunk
	calls  int
}

func (f *fakeSearcher) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int) ([]retrieve.ScoredChunk, error) {
	round := f.calls
	if round >= len(f.rounds) {
		round = len(f.rounds) - 1
	}
	f.calls++
	return f.rounds[round], nil
}

func newEngine(searcher retrieve.Searcher, maxRetries int) *Engine {
	logger := log.New(os.Stderr, "", 0)
	provider := &scriptedLLM{}
	retriever := retrieve.NewRetriever(searcher, &fakeEmbedder{}, 10, logger)
	evaluator := relevance.NewEvaluator(provider, logger, 0.5)
	rewriter := rewrite.NewRewriter(provider, logger)
	return NewEngine(retriever, evaluator, rewriter, logger, maxRetries, 1, 0.5)
}

func TestShouldCorrect(t *testing.T) {
	e := newEngine(&fakeSearcher{rounds: [][]retrieve.ScoredChunk{nil}}, 2)

	tests := []struct {
		name       string
		avg        float64
		highCount  int
		retryCount int
		want       bool
	}{
		{"weak results correct", 0.2, 0, 0, true},
		{"high doc stops correction", 0.2, 1, 0, false},
		{"good average stops correction", 0.6, 0, 0, false},
		{"exhausted retries stop correction", 0.2, 0, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ShouldCorrect(tt.avg, tt.highCount, tt.retryCount)
			if got != tt.want {
				t.Errorf("ShouldCorrect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextAction(t *testing.T) {
	e := newEngine(&fakeSearcher{rounds: [][]retrieve.ScoredChunk{nil}}, 2)

	if got := e.NextAction(0.6, 0, 0); got != ActionProceed {
		t.Errorf("good average = %q, want proceed", got)
	}
	if got := e.NextAction(0.2, 1, 0); got != ActionProceed {
		t.Errorf("high doc = %q, want proceed", got)
	}
	if got := e.NextAction(0.2, 0, 1); got != ActionRewrite {
		t.Errorf("retries left = %q, want rewrite", got)
	}
	if got := e.NextAction(0.2, 0, 2); got != ActionWebSearch {
		t.Errorf("exhausted = %q, want web_search", got)
	}
}

func TestRunCorrectsThenSucceeds(t *testing.T) {
	searcher := &fakeSearcher{rounds: [][]retrieve.ScoredChunk{
		{{Content: "doc-weak", Source: "a.md", Similarity: 0.6}},
		{{Content: "doc-strong", Source: "b.md", Similarity: 0.8}},
	}}
	e := newEngine(searcher, 2)

	result := e.Run(context.Background(), "원래 질문")

	if !result.CorrectionTriggered {
		t.Error("correction should have triggered")
	}
	if result.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", result.RetryCount)
	}
	if result.FinalQuery != "확장된 질문" {
		t.Errorf("FinalQuery = %q", result.FinalQuery)
	}
	if len(result.RewrittenQueries) != 2 || result.RewrittenQueries[0] != "원래 질문" {
		t.Errorf("RewrittenQueries = %v", result.RewrittenQueries)
	}
	if result.Action != ActionProceed {
		t.Errorf("Action = %q, want proceed", result.Action)
	}
	if result.Metrics.HighCount != 1 {
		t.Errorf("HighCount = %d, want 1", result.Metrics.HighCount)
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	searcher := &fakeSearcher{rounds: [][]retrieve.ScoredChunk{
		{{Content: "doc-weak", Source: "a.md", Similarity: 0.6}},
	}}
	e := newEngine(searcher, 2)

	result := e.Run(context.Background(), "답 없는 질문")

	if result.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", result.RetryCount)
	}
	if result.Action != ActionWebSearch {
		t.Errorf("Action = %q, want web_search", result.Action)
	}
}

func TestRunEmptyRetrieval(t *testing.T) {
	searcher := &fakeSearcher{rounds: [][]retrieve.ScoredChunk{nil}}
	e := newEngine(searcher, 1)

	result := e.Run(context.Background(), "질문")

	if len(result.Documents) != 0 {
		t.Errorf("Documents = %v, want empty", result.Documents)
	}
	// Empty retrieval still exhausts the retry budget before giving up.
	if result.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", result.RetryCount)
	}
	if result.Action != ActionWebSearch {
		t.Errorf("Action = %q, want web_search", result.Action)
	}
}
