package routing

import (
	"testing"

	"corrective-rag-be/pkg/rag/state"
)

func defaultSettings(gate GateMode) Settings {
	return Settings{
		RelevanceThreshold:   0.5,
		MinHighRelevanceDocs: 1,
		MaxCorrectionRetries: 2,
		MaxHITLInteractions:  2,
		Gate:                 gate,
		HITLEnabled:          true,
	}
}

func TestAfterAnalysis(t *testing.T) {
	tests := []struct {
		name             string
		clarification    bool
		interactionCount int
		complexity       state.Complexity
		want             string
	}{
		{
			name:          "clarification needed goes to hitl",
			clarification: true,
			complexity:    state.ComplexitySimple,
			want:          state.NodeClarifyHITL,
		},
		{
			name:             "clarification wins over complexity",
			clarification:    true,
			complexity:       state.ComplexityComplex,
			want:             state.NodeClarifyHITL,
		},
		{
			name:             "interaction cap suppresses clarification",
			clarification:    true,
			interactionCount: 2,
			complexity:       state.ComplexitySimple,
			want:             state.NodeRetrieve,
		},
		{
			name:       "complex query decomposes",
			complexity: state.ComplexityComplex,
			want:       state.NodeDecomposeQuery,
		},
		{
			name:       "simple query retrieves",
			complexity: state.ComplexitySimple,
			want:       state.NodeRetrieve,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.New("테스트 질문", "s1")
			s.ClarificationNeeded = tt.clarification
			s.InteractionCount = tt.interactionCount
			s.Complexity = tt.complexity

			got := AfterAnalysis(s, defaultSettings(GateRelaxed))
			if got != tt.want {
				t.Errorf("AfterAnalysis() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAfterHITLResponse(t *testing.T) {
	s := state.New("q", "s1")
	s.Complexity = state.ComplexityComplex
	if got := AfterHITLResponse(s); got != state.NodeDecomposeQuery {
		t.Errorf("complex resume = %q, want %q", got, state.NodeDecomposeQuery)
	}

	s.Complexity = state.ComplexitySimple
	if got := AfterHITLResponse(s); got != state.NodeRetrieve {
		t.Errorf("simple resume = %q, want %q", got, state.NodeRetrieve)
	}
}

func TestAfterEvaluationRelaxed(t *testing.T) {
	cfg := defaultSettings(GateRelaxed)

	s := state.New("q", "s1")
	s.RetrievedDocs = []state.Document{{Content: "doc"}}
	// Relaxed gate ignores the scores entirely.
	s.AvgRelevance = 0.01
	if got := AfterEvaluation(s, cfg); got != state.NodeGenerateResponse {
		t.Errorf("docs present = %q, want %q", got, state.NodeGenerateResponse)
	}

	s.RetrievedDocs = nil
	if got := AfterEvaluation(s, cfg); got != state.NodeWebSearch {
		t.Errorf("no docs = %q, want %q", got, state.NodeWebSearch)
	}
}

func TestAfterEvaluationStrict(t *testing.T) {
	cfg := defaultSettings(GateStrict)

	tests := []struct {
		name        string
		docs        int
		highCount   int
		mediumCount int
		avg         float64
		retryCount  int
		want        string
	}{
		{
			name:      "high count passes",
			docs:      2,
			highCount: 1,
			avg:       0.2,
			want:      state.NodeGenerateResponse,
		},
		{
			name: "average passes",
			docs: 2,
			avg:  0.55,
			want: state.NodeGenerateResponse,
		},
		{
			name:        "medium doc with passable average passes",
			docs:        2,
			mediumCount: 1,
			avg:         0.35,
			want:        state.NodeGenerateResponse,
		},
		{
			name:       "weak results rewrite while retries remain",
			docs:       2,
			avg:        0.2,
			retryCount: 0,
			want:       state.NodeRewriteQuery,
		},
		{
			name:       "exhausted retries fall back to web",
			docs:       2,
			avg:        0.2,
			retryCount: 2,
			want:       state.NodeWebSearch,
		},
		{
			name:       "empty set with retries left still rewrites",
			docs:       0,
			avg:        0,
			retryCount: 1,
			want:       state.NodeRewriteQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.New("q", "s1")
			for i := 0; i < tt.docs; i++ {
				s.RetrievedDocs = append(s.RetrievedDocs, state.Document{Content: "doc"})
			}
			s.HighRelevanceCount = tt.highCount
			s.MediumRelevanceCount = tt.mediumCount
			s.AvgRelevance = tt.avg
			s.RetryCount = tt.retryCount

			got := AfterEvaluation(s, cfg)
			if got != tt.want {
				t.Errorf("AfterEvaluation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldContinue(t *testing.T) {
	s := state.New("q", "s1")
	if !ShouldContinue(s) {
		t.Error("fresh state should continue")
	}

	s.ErrorLog = []string{"e1", "e2"}
	if !ShouldContinue(s) {
		t.Error("two errors should still continue")
	}

	s.ErrorLog = append(s.ErrorLog, "e3")
	if ShouldContinue(s) {
		t.Error("three errors should abort")
	}
}
