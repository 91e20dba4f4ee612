package state

import (
	"testing"
)

func TestDeltaApplyScalars(t *testing.T) {
	s := New("원래 질문", "s1")

	d := &Delta{
		RefinedQuery: StrPtr("다듬은 질문"),
		Complexity:   ComplexityPtr(ComplexityComplex),
		IsAmbiguous:  BoolPtr(true),
		CurrentNode:  StrPtr(NodeAnalyzeQuery),
	}
	d.Apply(s)

	if s.RefinedQuery != "다듬은 질문" {
		t.Errorf("RefinedQuery = %q", s.RefinedQuery)
	}
	if s.Complexity != ComplexityComplex {
		t.Errorf("Complexity = %q", s.Complexity)
	}
	if !s.IsAmbiguous {
		t.Error("IsAmbiguous not applied")
	}
	if s.CurrentNode != NodeAnalyzeQuery {
		t.Errorf("CurrentNode = %q", s.CurrentNode)
	}

	// A nil pointer leaves the value alone.
	(&Delta{}).Apply(s)
	if s.RefinedQuery != "다듬은 질문" {
		t.Errorf("empty delta overwrote RefinedQuery: %q", s.RefinedQuery)
	}
}

func TestDeltaApplyCounters(t *testing.T) {
	s := New("q", "s1")

	for i := 0; i < 3; i++ {
		(&Delta{RetryDelta: 1, InteractionDelta: 1, LLMCalls: 2}).Apply(s)
	}

	if s.RetryCount != 3 {
		t.Errorf("RetryCount = %d, want 3", s.RetryCount)
	}
	if s.InteractionCount != 3 {
		t.Errorf("InteractionCount = %d, want 3", s.InteractionCount)
	}
	if s.TotalLLMCalls != 6 {
		t.Errorf("TotalLLMCalls = %d, want 6", s.TotalLLMCalls)
	}
}

func TestDeltaApplyAppendOnly(t *testing.T) {
	s := New("q", "s1")

	(&Delta{Errors: []string{"first"}, RewrittenQueries: []string{"q2"}}).Apply(s)
	(&Delta{Errors: []string{"second"}, RewrittenQueries: []string{"q3"}}).Apply(s)

	if len(s.ErrorLog) != 2 || s.ErrorLog[1] != "second" {
		t.Errorf("ErrorLog = %v", s.ErrorLog)
	}
	if len(s.RewrittenQueries) != 2 {
		t.Errorf("RewrittenQueries = %v", s.RewrittenQueries)
	}

	(&Delta{NewSubAnswers: []SubAnswer{{QuestionID: "q1"}}}).Apply(s)
	(&Delta{NewSubAnswers: []SubAnswer{{QuestionID: "q2"}}}).Apply(s)
	if len(s.SubAnswers) != 2 {
		t.Errorf("SubAnswers = %v", s.SubAnswers)
	}
}

func TestDeltaApplyDocsReplaced(t *testing.T) {
	s := New("q", "s1")
	s.RetrievedDocs = []Document{{Content: "old"}}

	// Without the flag a nil slice is a no-op.
	(&Delta{}).Apply(s)
	if len(s.RetrievedDocs) != 1 {
		t.Fatalf("docs dropped by empty delta")
	}

	// DocsReplaced forces replacement even with an empty set.
	(&Delta{DocsReplaced: true}).Apply(s)
	if len(s.RetrievedDocs) != 0 {
		t.Errorf("DocsReplaced did not clear docs: %v", s.RetrievedDocs)
	}
}

func TestDeltaApplyFinished(t *testing.T) {
	s := New("q", "s1")
	if !s.EndTime.IsZero() {
		t.Fatal("fresh state has an end time")
	}
	(&Delta{Finished: true}).Apply(s)
	if s.EndTime.IsZero() {
		t.Error("Finished did not set EndTime")
	}
}

func TestCombineScores(t *testing.T) {
	d := Document{Content: "doc"}

	d.CombineScores()
	if d.CombinedScore != nil {
		t.Error("combined score set without components")
	}

	d.EmbeddingScore = FloatPtr(0.5)
	d.LLMRelevanceScore = FloatPtr(1.0)
	d.CombineScores()
	if d.CombinedScore == nil {
		t.Fatal("combined score not set")
	}
	if got := *d.CombinedScore; got < 0.799 || got > 0.801 {
		t.Errorf("CombinedScore = %v, want 0.8", got)
	}
}

func TestEffectiveQuery(t *testing.T) {
	s := New("원래", "s1")
	if s.EffectiveQuery() != "원래" {
		t.Errorf("fresh state EffectiveQuery = %q", s.EffectiveQuery())
	}
	s.RefinedQuery = "다듬은"
	if s.EffectiveQuery() != "다듬은" {
		t.Errorf("EffectiveQuery = %q, want refined", s.EffectiveQuery())
	}
	s.RefinedQuery = ""
	if s.EffectiveQuery() != "원래" {
		t.Errorf("EffectiveQuery = %q, want original", s.EffectiveQuery())
	}
}
