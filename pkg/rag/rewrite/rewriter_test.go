package rewrite

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"corrective-rag-be/pkg/llm"
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

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name       string
		retryCount int
		previous   []Strategy
		want       Strategy
	}{
		{
			name:       "first retry starts with synonym expansion",
			retryCount: 0,
			want:       StrategySynonymExpansion,
		},
		{
			name:       "first retry skips used strategy",
			retryCount: 0,
			previous:   []Strategy{StrategySynonymExpansion},
			want:       StrategyContextAddition,
		},
		{
			name:       "second retry generalizes",
			retryCount: 1,
			previous:   []Strategy{StrategySynonymExpansion},
			want:       StrategyGeneralization,
		},
		{
			name:       "falls through to any unused strategy",
			retryCount: 1,
			previous:   []Strategy{StrategySynonymExpansion, StrategyContextAddition, StrategyGeneralization},
			want:       StrategySpecification,
		},
		{
			name:       "everything used defaults to generalization",
			retryCount: 1,
			previous:   allStrategies,
			want:       StrategyGeneralization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectStrategy(tt.retryCount, tt.previous)
			if got != tt.want {
				t.Errorf("SelectStrategy() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewrite(t *testing.T) {
	ctx := context.Background()

	r := NewRewriter(&stubLLM{
		response: `{"strategy": "synonym_expansion", "rewritten_query": "도커 컨테이너 오류 해결", "changes_made": "expanded"}`,
	}, testLogger())

	got, err := r.Rewrite(ctx, "도커 에러", StrategySynonymExpansion, []string{"도커 에러"})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "도커 컨테이너 오류 해결" {
		t.Errorf("Rewrite() = %q", got)
	}
}

func TestRewriteErrors(t *testing.T) {
	ctx := context.Background()

	r := NewRewriter(&stubLLM{err: errors.New("model down")}, testLogger())
	if _, err := r.Rewrite(ctx, "q", StrategyGeneralization, nil); err == nil {
		t.Error("expected error from failing provider")
	}

	r = NewRewriter(&stubLLM{response: `{"rewritten_query": "  "}`}, testLogger())
	if _, err := r.Rewrite(ctx, "q", StrategyGeneralization, nil); err == nil {
		t.Error("expected error for empty rewritten query")
	}
}
