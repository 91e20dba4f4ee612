// Package analyze classifies incoming queries: complexity, clarity, ambiguity
// and target domains. Its output drives the first routing decision of the
// workflow.
package analyze

import (
	"context"
	"fmt"
	"log"
	"strings"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/ragerror"
	"corrective-rag-be/pkg/rag/state"
)

const maxQueryLength = 2000

// Result is the structured output of query analysis.
type Result struct {
	RefinedQuery      string   `json:"refined_query"`
	Complexity        string   `json:"complexity"`
	ClarityConfidence float64  `json:"clarity_confidence"`
	IsAmbiguous       bool     `json:"is_ambiguous"`
	AmbiguityType     string   `json:"ambiguity_type"`
	DetectedDomains   []string `json:"detected_domains"`
}

// Analyzer runs LLM-based query analysis.
type Analyzer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewAnalyzer(llmProvider llm.LLMProvider, logger *log.Logger) *Analyzer {
	return &Analyzer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Analyze classifies a query. An empty query is rejected; a malformed LLM
// response degrades to a conservative "simple, unclear" result so the
// workflow keeps moving.
func (a *Analyzer) Analyze(ctx context.Context, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ragerror.ErrEmptyQuery
	}
	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}

	prompt := fmt.Sprintf(constant.QueryAnalysisPrompt, query)

	var result Result
	err := llm.GenerateStructured(ctx, a.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are a query analysis expert. Analyze the given query and return a structured analysis."),
	)
	if err != nil {
		a.logger.Printf("[ERROR] query analysis failed, using defaults: %v", err)
		return &Result{
			RefinedQuery:      query,
			Complexity:        string(state.ComplexitySimple),
			ClarityConfidence: 0.5,
			DetectedDomains:   []string{"general"},
		}, nil
	}

	if result.RefinedQuery == "" {
		result.RefinedQuery = query
	}
	if result.Complexity != string(state.ComplexityComplex) {
		result.Complexity = string(state.ComplexitySimple)
	}
	return &result, nil
}
