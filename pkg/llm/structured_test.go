package llm

import (
	"context"
	"errors"
	"testing"

	"corrective-rag-be/pkg/rag/ragerror"
)

type cannedProvider struct {
	response string
	err      error
}

func (c *cannedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return c.response, c.err
}

func (c *cannedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return c.response, c.err
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose wrapped", `Here is the result: {"a": 1}. Let me know.`, `{"a": 1}`},
		{"nested objects", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"no object", "no json here", "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.response); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateStructured(t *testing.T) {
	var out struct {
		Score float64 `json:"score"`
	}

	provider := &cannedProvider{response: "Sure!\n```json\n{\"score\": 0.75}\n```"}
	if err := GenerateStructured(context.Background(), provider, "prompt", &out); err != nil {
		t.Fatalf("GenerateStructured() error = %v", err)
	}
	if out.Score != 0.75 {
		t.Errorf("Score = %v, want 0.75", out.Score)
	}
}

func TestGenerateStructuredMalformed(t *testing.T) {
	var out struct{}
	provider := &cannedProvider{response: `{"score": not-json}`}

	err := GenerateStructured(context.Background(), provider, "prompt", &out)
	var parseErr *ragerror.ParsingError
	if !errors.As(err, &parseErr) {
		t.Errorf("error = %v, want *ragerror.ParsingError", err)
	}
}

func TestGenerateStructuredProviderError(t *testing.T) {
	var out struct{}
	provider := &cannedProvider{err: errors.New("model down")}

	if err := GenerateStructured(context.Background(), provider, "prompt", &out); err == nil {
		t.Error("expected provider error to propagate")
	}
}
