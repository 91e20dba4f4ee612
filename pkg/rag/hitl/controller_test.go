package hitl

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/state"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestShouldClarify(t *testing.T) {
	tests := []struct {
		name             string
		enabled          bool
		isAmbiguous      bool
		clarity          float64
		interactionCount int
		want             bool
	}{
		{name: "disabled never clarifies", enabled: false, isAmbiguous: true, clarity: 0.1, want: false},
		{name: "ambiguous clarifies", enabled: true, isAmbiguous: true, clarity: 0.9, want: true},
		{name: "low clarity clarifies", enabled: true, clarity: 0.5, want: true},
		{name: "clear unambiguous query skips", enabled: true, clarity: 0.9, want: false},
		{name: "clarity exactly at floor skips", enabled: true, clarity: 0.8, want: false},
		{name: "interaction cap wins", enabled: true, isAmbiguous: true, clarity: 0.1, interactionCount: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(&stubLLM{}, testLogger(), tt.enabled, 2)
			got := c.ShouldClarify(tt.isAmbiguous, tt.clarity, tt.interactionCount)
			if got != tt.want {
				t.Errorf("ShouldClarify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateClarificationFallback(t *testing.T) {
	c := NewController(&stubLLM{err: errors.New("model down")}, testLogger(), true, 2)

	got := c.GenerateClarification(context.Background(), "그거 어떻게 해?", state.AmbiguityVagueTerm, 0.3, nil)
	if got.Question != constant.ClarifyQuestionVagueTerm {
		t.Errorf("fallback question = %q", got.Question)
	}
	if len(got.Options) < 2 {
		t.Errorf("fallback options = %v", got.Options)
	}

	// Unknown ambiguity type falls back to the generic question.
	got = c.GenerateClarification(context.Background(), "질문", "", 0.3, nil)
	if got.Question != constant.ClarifyQuestionGeneric {
		t.Errorf("generic fallback question = %q", got.Question)
	}
}

func TestGenerateClarificationRejectsThinResults(t *testing.T) {
	// One option is not enough to present a choice; expect the fallback.
	c := NewController(&stubLLM{
		response: `{"clarification_question": "무엇을 말씀하시나요?", "options": ["하나"]}`,
	}, testLogger(), true, 2)

	got := c.GenerateClarification(context.Background(), "질문", state.AmbiguityMissingContext, 0.3, nil)
	if got.Question != constant.ClarifyQuestionMissingContext {
		t.Errorf("question = %q, want fallback", got.Question)
	}
}

func TestRefineQuery(t *testing.T) {
	ctx := context.Background()

	c := NewController(&stubLLM{
		response: `{"refined_query": "도커 컨테이너 메모리 오류 해결 방법"}`,
	}, testLogger(), true, 2)
	got := c.RefineQuery(ctx, "도커 오류", "어떤 오류인가요?", "메모리 부족")
	if got != "도커 컨테이너 메모리 오류 해결 방법" {
		t.Errorf("RefineQuery() = %q", got)
	}

	// LLM failure degrades to the parenthesized concatenation.
	c = NewController(&stubLLM{err: errors.New("model down")}, testLogger(), true, 2)
	got = c.RefineQuery(ctx, "도커 오류", "어떤 오류인가요?", "메모리 부족")
	if got != "도커 오류 (메모리 부족)" {
		t.Errorf("fallback = %q", got)
	}

	// An empty answer keeps the original query untouched.
	got = c.RefineQuery(ctx, "도커 오류", "어떤 오류인가요?", "   ")
	if got != "도커 오류" {
		t.Errorf("empty response refinement = %q", got)
	}
}
