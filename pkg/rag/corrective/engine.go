// Package corrective runs the retrieval correction loop: retrieve, evaluate,
// and rewrite-and-retry until relevance is sufficient or retries run out.
package corrective

import (
	"context"
	"log"

	"corrective-rag-be/pkg/rag/relevance"
	"corrective-rag-be/pkg/rag/retrieve"
	"corrective-rag-be/pkg/rag/rewrite"
	"corrective-rag-be/pkg/rag/state"
)

// Action is the terminal decision of a correction loop.
type Action string

const (
	ActionProceed   Action = "proceed"
	ActionRewrite   Action = "rewrite"
	ActionWebSearch Action = "web_search"
)

// LoopResult carries everything the loop learned.
type LoopResult struct {
	Documents           []state.Document
	Evaluations         []relevance.Evaluation
	Metrics             relevance.Metrics
	CorrectionTriggered bool
	RetryCount          int
	RewrittenQueries    []string
	FinalQuery          string
	Action              Action
}

// Engine wires the retriever, the relevance evaluator and the rewriter into
// one loop.
type Engine struct {
	retriever *retrieve.Retriever
	evaluator *relevance.Evaluator
	rewriter  *rewrite.Rewriter
	logger    *log.Logger

	maxRetries           int
	minHighRelevanceDocs int
	relevanceThreshold   float64
}

func NewEngine(
	retriever *retrieve.Retriever,
	evaluator *relevance.Evaluator,
	rewriter *rewrite.Rewriter,
	logger *log.Logger,
	maxRetries int,
	minHighRelevanceDocs int,
	relevanceThreshold float64,
) *Engine {
	return &Engine{
		retriever:            retriever,
		evaluator:            evaluator,
		rewriter:             rewriter,
		logger:               logger,
		maxRetries:           maxRetries,
		minHighRelevanceDocs: minHighRelevanceDocs,
		relevanceThreshold:   relevanceThreshold,
	}
}

// ShouldCorrect reports whether another rewrite-and-retry round is warranted:
// retries remain and relevance is insufficient on both the high-count and
// average measures.
func (e *Engine) ShouldCorrect(avgRelevance float64, highCount, retryCount int) bool {
	if retryCount >= e.maxRetries {
		return false
	}
	return highCount < e.minHighRelevanceDocs && avgRelevance < e.relevanceThreshold
}

// NextAction decides what follows the loop.
func (e *Engine) NextAction(avgRelevance float64, highCount, retryCount int) Action {
	if highCount >= e.minHighRelevanceDocs || avgRelevance >= e.relevanceThreshold {
		return ActionProceed
	}
	if retryCount < e.maxRetries {
		return ActionRewrite
	}
	return ActionWebSearch
}

// retrieveAndEvaluate performs one retrieval round. Retrieval errors are
// logged and treated as an empty result set, not as loop failures.
func (e *Engine) retrieveAndEvaluate(ctx context.Context, query string) ([]state.Document, []relevance.Evaluation, relevance.Metrics) {
	docs, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		e.logger.Printf("[ERROR] retrieval failed, treating as empty: %v", err)
		docs = nil
	}
	if len(docs) == 0 {
		return nil, nil, relevance.Metrics{Scores: []float64{}}
	}

	evaluations := e.evaluator.EvaluateBatch(ctx, query, docs)
	metrics := e.evaluator.CalculateMetrics(evaluations)
	return docs, evaluations, metrics
}

// Run executes the full correction loop for one query.
func (e *Engine) Run(ctx context.Context, query string) *LoopResult {
	currentQuery := query
	retryCount := 0
	rewrittenQueries := []string{query}
	var previousStrategies []rewrite.Strategy
	correctionTriggered := false

	docs, evaluations, metrics := e.retrieveAndEvaluate(ctx, currentQuery)

	for e.ShouldCorrect(metrics.Avg, metrics.HighCount, retryCount) {
		correctionTriggered = true

		newQuery, strategy, err := e.rewriter.RewriteAuto(ctx, currentQuery, retryCount, rewrittenQueries, previousStrategies)
		if err != nil {
			e.logger.Printf("[ERROR] rewrite failed, stopping correction loop: %v", err)
			break
		}

		e.logger.Printf("[PHASE %d] rewrote query with %s strategy", retryCount+1, strategy)

		currentQuery = newQuery
		retryCount++
		rewrittenQueries = append(rewrittenQueries, newQuery)
		previousStrategies = append(previousStrategies, strategy)

		docs, evaluations, metrics = e.retrieveAndEvaluate(ctx, currentQuery)
	}

	return &LoopResult{
		Documents:           docs,
		Evaluations:         evaluations,
		Metrics:             metrics,
		CorrectionTriggered: correctionTriggered,
		RetryCount:          retryCount,
		RewrittenQueries:    rewrittenQueries,
		FinalQuery:          currentQuery,
		Action:              e.NextAction(metrics.Avg, metrics.HighCount, retryCount),
	}
}
