package relevance

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/state"
)

type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.response, s.err
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestScoreToLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0.9, LevelHigh},
		{0.6, LevelHigh},
		{0.59, LevelMedium},
		{0.3, LevelMedium},
		{0.29, LevelLow},
		{0.0, LevelLow},
	}
	for _, tt := range tests {
		if got := ScoreToLevel(tt.score); got != tt.want {
			t.Errorf("ScoreToLevel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestEvaluatePrefilterSkipsLLM(t *testing.T) {
	stub := &stubLLM{}
	e := NewEvaluator(stub, testLogger(), 0.5)

	doc := state.Document{
		Content:        "무관한 내용",
		EmbeddingScore: state.FloatPtr(0.1),
	}
	eval, err := e.Evaluate(context.Background(), "질문", &doc)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Level != LevelLow {
		t.Errorf("level = %q, want low", eval.Level)
	}
	if stub.calls != 0 {
		t.Errorf("LLM called %d times for prefiltered doc", stub.calls)
	}
}

func TestEvaluateFillsCombinedScore(t *testing.T) {
	e := NewEvaluator(&stubLLM{
		response: `{"relevance_score": 0.9, "reason": "directly answers the question"}`,
	}, testLogger(), 0.5)

	doc := state.Document{
		Content:        "도커 메모리 설정 방법",
		Metadata:       state.DocumentMetadata{Source: "docker.md"},
		EmbeddingScore: state.FloatPtr(0.7),
	}
	eval, err := e.Evaluate(context.Background(), "도커 메모리", &doc)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Level != LevelHigh {
		t.Errorf("level = %q, want high", eval.Level)
	}
	if doc.CombinedScore == nil {
		t.Fatal("combined score not filled")
	}
	// 0.4*0.7 + 0.6*0.9 = 0.82
	if got := *doc.CombinedScore; got < 0.819 || got > 0.821 {
		t.Errorf("combined = %v, want 0.82", got)
	}
}

func TestEvaluateBatchSurvivesFailures(t *testing.T) {
	e := NewEvaluator(&stubLLM{err: errors.New("model down")}, testLogger(), 0.5)

	docs := []state.Document{
		{Content: "doc1", EmbeddingScore: state.FloatPtr(0.7)},
		{Content: "doc2", EmbeddingScore: state.FloatPtr(0.8)},
	}
	evaluations := e.EvaluateBatch(context.Background(), "질문", docs)
	if len(evaluations) != 2 {
		t.Fatalf("evaluations = %d, want 2", len(evaluations))
	}
	for i, eval := range evaluations {
		if eval.Level != LevelLow || eval.Score != 0 {
			t.Errorf("evaluation %d = %+v, want low/0", i, eval)
		}
	}
}

func TestCalculateMetrics(t *testing.T) {
	e := NewEvaluator(&stubLLM{}, testLogger(), 0.5)

	evaluations := []Evaluation{
		{Score: 0.8, Level: LevelHigh},
		{Score: 0.4, Level: LevelMedium},
		{Score: 0.1, Level: LevelLow},
	}
	m := e.CalculateMetrics(evaluations)

	if m.HighCount != 1 || m.MediumCount != 1 || m.LowCount != 1 {
		t.Errorf("counts = %d/%d/%d", m.HighCount, m.MediumCount, m.LowCount)
	}
	if m.Avg < 0.43 || m.Avg > 0.44 {
		t.Errorf("avg = %v", m.Avg)
	}
	if !m.Sufficient {
		t.Error("one high doc should be sufficient")
	}
}

func TestCalculateMetricsEmpty(t *testing.T) {
	e := NewEvaluator(&stubLLM{}, testLogger(), 0.5)
	m := e.CalculateMetrics(nil)
	if m.Avg != 0 || m.Sufficient {
		t.Errorf("empty metrics = %+v", m)
	}
	if m.Scores == nil {
		t.Error("scores should be an empty slice, not nil")
	}
}

func TestCalculateMetricsInsufficient(t *testing.T) {
	e := NewEvaluator(&stubLLM{}, testLogger(), 0.5)
	m := e.CalculateMetrics([]Evaluation{
		{Score: 0.2, Level: LevelLow},
		{Score: 0.1, Level: LevelLow},
	})
	if m.Sufficient {
		t.Error("all-low batch should be insufficient")
	}
}
