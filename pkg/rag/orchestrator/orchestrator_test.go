package orchestrator

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"corrective-rag-be/pkg/embedding"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/ragerror"
	"corrective-rag-be/pkg/rag/retrieve"
	"corrective-rag-be/pkg/rag/routing"
	"corrective-rag-be/pkg/rag/state"
	"corrective-rag-be/pkg/websearch"
)

// scriptedLLM plays every model role in the workflow, dispatching on prompt
// markers. Queries containing "그거" are analyzed as ambiguous to exercise the
// clarification round trip; the check runs against the prompt's query section
// only, because the analysis template itself lists "그거" as a vague-term
// example.
type scriptedLLM struct{}

// querySection extracts the text under the "## Query" heading.
func querySection(prompt string) string {
	const marker = "## Query\n"
	start := strings.Index(prompt, marker)
	if start == -1 {
		return ""
	}
	rest := prompt[start+len(marker):]
	if end := strings.Index(rest, "\n\n"); end != -1 {
		return rest[:end]
	}
	return rest
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("unexpected chat call")
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "Analyze the following user query"):
		if strings.Contains(querySection(prompt), "그거") {
			return `{
				"refined_query": "그거 설명",
				"complexity": "simple",
				"clarity_confidence": 0.3,
				"is_ambiguous": true,
				"ambiguity_type": "vague_term",
				"detected_domains": ["general"]
			}`, nil
		}
		return `{
			"refined_query": "도커 컨테이너 개념 설명",
			"complexity": "simple",
			"clarity_confidence": 0.95,
			"is_ambiguous": false,
			"detected_domains": ["infrastructure"]
		}`, nil
	case strings.Contains(prompt, "clarification specialist"):
		return `{
			"clarification_question": "무엇에 대해 알고 싶으신가요?",
			"options": ["도커", "쿠버네티스", "기타"]
		}`, nil
	case strings.Contains(prompt, "query refinement specialist"):
		return `{"refined_query": "도커 기본 개념 설명"}`, nil
	case strings.Contains(prompt, "Evaluate the relevance"):
		return `{"relevance_score": 0.9, "reason": "directly relevant"}`, nil
	case strings.Contains(prompt, "Based on the provided documents"):
		return `{
			"response": "도커는 컨테이너 기반 가상화 플랫폼입니다.",
			"sources": ["docker-guide.md"],
			"has_sufficient_info": true
		}`, nil
	case strings.Contains(prompt, "Evaluate the quality"):
		return `{"completeness": 0.9, "accuracy": 0.9, "clarity": 0.9, "confidence": 0.9}`, nil
	case strings.Contains(prompt, "web search query optimizer"):
		return `{"optimized_query": "docker container basics"}`, nil
	default:
		return `{}`, nil
	}
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5, 0.5}},
	}, nil
}

type fakeSearcher struct {
	chunks []retrieve.ScoredChunk
}

func (f *fakeSearcher) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int) ([]retrieve.ScoredChunk, error) {
	return f.chunks, nil
}

func newTestOrchestrator(searcher retrieve.Searcher) *Orchestrator {
	return New(Dependencies{
		LLMProvider: &scriptedLLM{},
		Searcher:    searcher,
		Embedder:    &fakeEmbedder{},
		WebClient:   websearch.NewTavilyClient("", 5),
		Logger:      log.New(os.Stderr, "", 0),
	}, Config{
		RelevanceThreshold:   0.5,
		MinHighRelevanceDocs: 1,
		MaxRetrievalResults:  10,
		MaxCorrectionRetries: 2,
		MaxHITLInteractions:  2,
		Gate:                 routing.GateRelaxed,
		HITLEnabled:          true,
		PendingTTL:           time.Hour,
	})
}

func TestProcessHappyPath(t *testing.T) {
	o := newTestOrchestrator(&fakeSearcher{chunks: []retrieve.ScoredChunk{
		{Content: "도커는 컨테이너 런타임입니다.", Source: "docker-guide.md", Similarity: 0.8},
	}})

	result, err := o.Process(context.Background(), "도커란 무엇인가요?", "", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.NeedsClarification {
		t.Fatal("clear query should not need clarification")
	}
	// The analysis template lists vague-term examples; only the query itself
	// may mark the run ambiguous.
	if result.State.IsAmbiguous {
		t.Error("clear query flagged as ambiguous")
	}
	if result.Response != "도커는 컨테이너 기반 가상화 플랫폼입니다." {
		t.Errorf("Response = %q", result.Response)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "docker-guide.md" {
		t.Errorf("Sources = %v", result.Sources)
	}
	if result.RetrievalSource != state.SourceVector {
		t.Errorf("RetrievalSource = %q, want vector", result.RetrievalSource)
	}
	if result.NeedsDisclaimer {
		t.Error("confident vector answer should not carry a disclaimer")
	}
	if result.SessionID == "" {
		t.Error("session id not generated")
	}
	if result.State.CurrentNode != state.NodeEvaluateQuality {
		t.Errorf("final node = %q", result.State.CurrentNode)
	}
}

func TestProcessClarificationRoundTrip(t *testing.T) {
	o := newTestOrchestrator(&fakeSearcher{chunks: []retrieve.ScoredChunk{
		{Content: "도커 기본 개념 문서", Source: "docker-guide.md", Similarity: 0.8},
	}})
	ctx := context.Background()

	// 1. The vague query suspends on a clarification.
	first, err := o.Process(ctx, "그거 알려줘", "", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !first.NeedsClarification {
		t.Fatal("vague query should suspend for clarification")
	}
	if first.Clarification.Question != "무엇에 대해 알고 싶으신가요?" {
		t.Errorf("question = %q", first.Clarification.Question)
	}
	if !o.HasPendingSession(first.SessionID) {
		t.Fatal("suspended session not registered")
	}

	// 2. The answer resumes through the continuation graph to a final answer.
	second, err := o.Process(ctx, "", first.SessionID, "도커")
	if err != nil {
		t.Fatalf("resume error = %v", err)
	}
	if second.NeedsClarification {
		t.Fatal("resumed session clarified again")
	}
	if second.Response == "" {
		t.Error("resumed session produced no answer")
	}
	if second.State.RefinedQuery != "도커 기본 개념 설명" {
		t.Errorf("RefinedQuery = %q", second.State.RefinedQuery)
	}
	if second.State.InteractionCount != 1 {
		t.Errorf("InteractionCount = %d, want 1", second.State.InteractionCount)
	}

	// 3. Resumption consumed the pending entry.
	if o.HasPendingSession(first.SessionID) {
		t.Error("pending entry survived resumption")
	}
}

func TestProcessResumeUnknownSession(t *testing.T) {
	o := newTestOrchestrator(&fakeSearcher{})
	_, err := o.Process(context.Background(), "", "missing-session", "답변")
	if !errors.Is(err, ragerror.ErrUnknownSession) {
		t.Errorf("error = %v, want ErrUnknownSession", err)
	}
}

func TestProcessEmptyQuery(t *testing.T) {
	o := newTestOrchestrator(&fakeSearcher{})
	_, err := o.Process(context.Background(), "", "", "")
	if !errors.Is(err, ragerror.ErrEmptyQuery) {
		t.Errorf("error = %v, want ErrEmptyQuery", err)
	}
}

func TestProcessWebFallback(t *testing.T) {
	// No vector hits and no web API key: the workflow still terminates with a
	// disclaimed web-sourced answer.
	o := newTestOrchestrator(&fakeSearcher{})

	result, err := o.Process(context.Background(), "도커란 무엇인가요?", "", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !result.State.WebSearchTriggered {
		t.Error("web search should have triggered on an empty collection")
	}
	if !result.NeedsDisclaimer {
		t.Error("web-backed answer must carry the disclaimer")
	}
	if result.RetrievalSource != state.SourceWeb {
		t.Errorf("RetrievalSource = %q, want web", result.RetrievalSource)
	}
}

func TestGetPendingClarification(t *testing.T) {
	o := newTestOrchestrator(&fakeSearcher{})
	ctx := context.Background()

	first, err := o.Process(ctx, "그거 알려줘", "", "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	clarification, found := o.GetPendingClarification(first.SessionID)
	if !found {
		t.Fatal("pending clarification not found")
	}
	if clarification.Question == "" || len(clarification.Options) == 0 {
		t.Errorf("clarification = %+v", clarification)
	}

	// Peeking does not consume the suspension.
	if !o.HasPendingSession(first.SessionID) {
		t.Error("GetPendingClarification consumed the entry")
	}

	if _, found := o.GetPendingClarification("missing"); found {
		t.Error("unknown session reported a clarification")
	}
}
