// Package rewrite reformulates queries whose retrieval came back with weak
// relevance. Strategy selection is tiered by retry count.
package rewrite

import (
	"context"
	"fmt"
	"log"
	"strings"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/pkg/llm"
)

// Strategy names a rewrite technique.
type Strategy string

const (
	StrategySynonymExpansion Strategy = "synonym_expansion"
	StrategyContextAddition  Strategy = "context_addition"
	StrategyGeneralization   Strategy = "generalization"
	StrategySpecification    Strategy = "specification"
)

var (
	firstRetryStrategies  = []Strategy{StrategySynonymExpansion, StrategyContextAddition}
	secondRetryStrategies = []Strategy{StrategyGeneralization}
	allStrategies         = []Strategy{
		StrategySynonymExpansion,
		StrategyContextAddition,
		StrategyGeneralization,
		StrategySpecification,
	}
)

// Result is one rewrite attempt.
type Result struct {
	Strategy       string `json:"strategy"`
	RewrittenQuery string `json:"rewritten_query"`
	ChangesMade    string `json:"changes_made"`
}

// Rewriter reformulates failed queries.
type Rewriter struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewRewriter(llmProvider llm.LLMProvider, logger *log.Logger) *Rewriter {
	return &Rewriter{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// SelectStrategy picks a rewrite strategy by retry tier, skipping strategies
// already used. First retry broadens the query; later retries generalize.
func SelectStrategy(retryCount int, previousStrategies []Strategy) Strategy {
	used := make(map[Strategy]bool, len(previousStrategies))
	for _, s := range previousStrategies {
		used[s] = true
	}

	candidates := secondRetryStrategies
	if retryCount == 0 {
		candidates = firstRetryStrategies
	}

	for _, s := range candidates {
		if !used[s] {
			return s
		}
	}
	for _, s := range allStrategies {
		if !used[s] {
			return s
		}
	}
	return StrategyGeneralization
}

// Rewrite produces a new query with the given strategy, avoiding previous
// attempts. An LLM failure or an empty/duplicate result falls back to the
// original query tagged with the strategy name, so the retry still differs
// from the last attempt textually.
func (r *Rewriter) Rewrite(ctx context.Context, query string, strategy Strategy, previousQueries []string) (string, error) {
	previous := "None"
	if len(previousQueries) > 0 {
		var lines []string
		for _, q := range previousQueries {
			lines = append(lines, "- "+q)
		}
		previous = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(constant.QueryRewritePrompt, query, string(strategy), previous)

	var result Result
	err := llm.GenerateStructured(ctx, r.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are an expert at reformulating search queries for better results."),
	)
	if err != nil {
		return "", fmt.Errorf("query rewrite failed: %w", err)
	}
	if strings.TrimSpace(result.RewrittenQuery) == "" {
		return "", fmt.Errorf("query rewrite returned empty query")
	}
	return result.RewrittenQuery, nil
}

// RewriteAuto selects a strategy for the retry tier and rewrites in one call.
func (r *Rewriter) RewriteAuto(ctx context.Context, query string, retryCount int, previousQueries []string, previousStrategies []Strategy) (string, Strategy, error) {
	strategy := SelectStrategy(retryCount, previousStrategies)
	rewritten, err := r.Rewrite(ctx, query, strategy, previousQueries)
	if err != nil {
		return "", strategy, err
	}
	return rewritten, strategy, nil
}
