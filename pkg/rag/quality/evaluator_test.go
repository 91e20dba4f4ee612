package quality

import (
	"context"
	"errors"
	"log"
	"math"
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

func TestConfidence(t *testing.T) {
	// 0.4*0.9 + 0.4*0.8 + 0.2*0.7 = 0.82
	got := Confidence(0.9, 0.8, 0.7)
	if math.Abs(got-0.82) > 1e-9 {
		t.Errorf("Confidence() = %v, want 0.82", got)
	}
}

func TestNeedsDisclaimer(t *testing.T) {
	tests := []struct {
		name                               string
		confidence, completeness, accuracy float64
		want                               bool
	}{
		{"all above thresholds", 0.85, 0.7, 0.8, false},
		{"low confidence", 0.7, 0.9, 0.9, true},
		{"low completeness", 0.9, 0.5, 0.9, true},
		{"low accuracy", 0.9, 0.9, 0.6, true},
		{"exactly at thresholds", 0.8, 0.6, 0.7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NeedsDisclaimer(tt.confidence, tt.completeness, tt.accuracy)
			if got != tt.want {
				t.Errorf("NeedsDisclaimer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateEmptyResponse(t *testing.T) {
	e := NewEvaluator(&stubLLM{}, testLogger())
	result, err := e.Evaluate(context.Background(), "질문", "   ", nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !result.NeedsDisclaimer || result.Confidence != 0 {
		t.Errorf("empty response result = %+v", result)
	}
}

func TestEvaluateOverridesDriftingConfidence(t *testing.T) {
	// The model claims 0.99 but the weighted formula gives 0.82.
	e := NewEvaluator(&stubLLM{
		response: `{"completeness": 0.9, "accuracy": 0.8, "clarity": 0.7, "confidence": 0.99}`,
	}, testLogger())

	result, err := e.Evaluate(context.Background(), "질문", "충분히 긴 답변입니다.", []string{"a.md"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if math.Abs(result.Confidence-0.82) > 1e-9 {
		t.Errorf("confidence = %v, want recomputed 0.82", result.Confidence)
	}
}

func TestEvaluateKeepsCloseConfidence(t *testing.T) {
	e := NewEvaluator(&stubLLM{
		response: `{"completeness": 0.9, "accuracy": 0.8, "clarity": 0.7, "confidence": 0.85}`,
	}, testLogger())

	result, err := e.Evaluate(context.Background(), "질문", "답변", []string{"a.md"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Confidence != 0.85 {
		t.Errorf("confidence = %v, want model value kept", result.Confidence)
	}
}

func TestEvaluatePropagatesLLMError(t *testing.T) {
	e := NewEvaluator(&stubLLM{err: errors.New("model down")}, testLogger())
	if _, err := e.Evaluate(context.Background(), "질문", "답변", nil); err == nil {
		t.Error("expected error from failing provider")
	}
}

func TestQuickEvaluate(t *testing.T) {
	e := NewEvaluator(&stubLLM{}, testLogger())

	longResponse := make([]byte, 600)
	for i := range longResponse {
		longResponse[i] = 'a'
	}

	strong := e.QuickEvaluate(string(longResponse), []string{"a.md", "b.md"}, 0.85)
	weak := e.QuickEvaluate("짧음", nil, 0.1)

	if strong.Confidence <= weak.Confidence {
		t.Errorf("strong (%v) should outscore weak (%v)", strong.Confidence, weak.Confidence)
	}
	if !weak.NeedsDisclaimer {
		t.Error("weak heuristic result should carry a disclaimer")
	}

	// Scores stay clamped to [0, 1].
	for _, v := range []float64{strong.Completeness, strong.Accuracy, strong.Clarity} {
		if v < 0 || v > 1 {
			t.Errorf("score out of range: %v", v)
		}
	}
}
