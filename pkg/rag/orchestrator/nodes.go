package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"corrective-rag-be/pkg/rag/decompose"
	"corrective-rag-be/pkg/rag/relevance"
	"corrective-rag-be/pkg/rag/state"
)

// Node implementations. Each reads the current state, calls into its
// component, and returns a delta; nodes never mutate the state directly.

func (o *Orchestrator) analyzeQueryNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	analysis, err := o.analyzer.Analyze(ctx, s.Query)
	if err != nil {
		return nil, err
	}

	clarificationNeeded := o.hitl.ShouldClarify(analysis.IsAmbiguous, analysis.ClarityConfidence, s.InteractionCount)

	d := &state.Delta{
		RefinedQuery:        state.StrPtr(analysis.RefinedQuery),
		Complexity:          state.ComplexityPtr(state.Complexity(analysis.Complexity)),
		ClarityConfidence:   state.FloatPtr(analysis.ClarityConfidence),
		IsAmbiguous:         state.BoolPtr(analysis.IsAmbiguous),
		DetectedDomains:     analysis.DetectedDomains,
		ClarificationNeeded: state.BoolPtr(clarificationNeeded),
		CurrentNode:         state.StrPtr(state.NodeAnalyzeQuery),
		LLMCalls:            1,
	}
	if analysis.AmbiguityType != "" {
		d.AmbiguityType = state.AmbiguityPtr(state.AmbiguityType(analysis.AmbiguityType))
	}
	return d, nil
}

func (o *Orchestrator) clarifyHITLNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	clarification := o.hitl.GenerateClarification(ctx, s.Query, s.AmbiguityType, s.ClarityConfidence, s.DetectedDomains)

	return &state.Delta{
		ClarificationQuestion: state.StrPtr(clarification.Question),
		ClarificationOptions:  clarification.Options,
		InteractionDelta:      1,
		CurrentNode:           state.StrPtr(state.NodeClarifyHITL),
		LLMCalls:              1,
	}, nil
}

func (o *Orchestrator) processHITLResponseNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	refined := o.hitl.RefineQuery(ctx, s.Query, s.ClarificationQuestion, s.UserResponse)

	return &state.Delta{
		RefinedQuery:        state.StrPtr(refined),
		ClarificationNeeded: state.BoolPtr(false),
		IsAmbiguous:         state.BoolPtr(false),
		CurrentNode:         state.StrPtr(state.NodeProcessHITLResponse),
		LLMCalls:            1,
	}, nil
}

func (o *Orchestrator) decomposeQueryNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	if !o.decomposer.ShouldDecompose(s.Complexity) {
		return &state.Delta{
			CurrentNode: state.StrPtr(state.NodeDecomposeQuery),
		}, nil
	}

	plan := o.decomposer.Decompose(ctx, s.EffectiveQuery(), s.Complexity, s.DetectedDomains)

	return &state.Delta{
		SubQuestions:   plan.SubQuestions,
		ParallelGroups: plan.ParallelGroups,
		SynthesisGuide: state.StrPtr(plan.SynthesisGuide),
		CurrentNode:    state.StrPtr(state.NodeDecomposeQuery),
		LLMCalls:       1,
	}, nil
}

// retrieveNode has two modes. A decomposed query fans its sub-questions out
// in dependency waves, each running its own correction loop; the merged
// evidence and sub-answers land in the state. A plain query is a single
// vector search. Retrieval errors degrade to an empty document set.
func (o *Orchestrator) retrieveNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	if len(s.SubQuestions) > 0 && len(s.SubAnswers) == 0 {
		return o.retrieveDecomposed(ctx, s)
	}

	docs, err := o.retriever.Retrieve(ctx, s.EffectiveQuery())
	d := &state.Delta{
		RetrievedDocs: docs,
		DocsReplaced:  true,
		CurrentNode:   state.StrPtr(state.NodeRetrieve),
	}
	if err != nil {
		d.Errors = []string{fmt.Sprintf("retrieval error: %v", err)}
	}
	return d, nil
}

func (o *Orchestrator) retrieveDecomposed(ctx context.Context, s *state.State) (*state.Delta, error) {
	var mu sync.Mutex
	var mergedDocs []state.Document

	plan := &decompose.Plan{
		SubQuestions:   s.SubQuestions,
		ParallelGroups: s.ParallelGroups,
		SynthesisGuide: s.SynthesisGuide,
	}
	answers := o.decomposer.ExecuteParallel(ctx, plan, func(ctx context.Context, question, targetDomain string) (string, []string, float64, error) {
		answer, sources, confidence, docs, err := o.answerSubQuestion(ctx, question)
		if err != nil {
			return "", nil, 0, err
		}
		mu.Lock()
		mergedDocs = append(mergedDocs, docs...)
		mu.Unlock()
		return answer, sources, confidence, nil
	})

	return &state.Delta{
		RetrievedDocs: mergedDocs,
		DocsReplaced:  true,
		NewSubAnswers: answers,
		CurrentNode:   state.StrPtr(state.NodeRetrieve),
	}, nil
}

// evaluateRelevanceNode scores the retrieved set. Documents that already
// carry scores from a sub-question correction loop are aggregated without
// another round of LLM calls.
func (o *Orchestrator) evaluateRelevanceNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	if len(s.RetrievedDocs) == 0 {
		return &state.Delta{
			RelevanceScores:      []float64{},
			AvgRelevance:         state.FloatPtr(0),
			HighRelevanceCount:   state.IntPtr(0),
			MediumRelevanceCount: state.IntPtr(0),
			CurrentNode:          state.StrPtr(state.NodeEvaluateRelevance),
		}, nil
	}

	var evaluations []relevance.Evaluation
	llmCalls := 0
	if len(s.SubAnswers) > 0 {
		evaluations = evaluationsFromScores(s.RetrievedDocs)
	} else {
		evaluations = o.relevanceEval.EvaluateBatch(ctx, s.EffectiveQuery(), s.RetrievedDocs)
		llmCalls = len(s.RetrievedDocs)
	}
	metrics := o.relevanceEval.CalculateMetrics(evaluations)

	return &state.Delta{
		RelevanceScores:      metrics.Scores,
		AvgRelevance:         state.FloatPtr(metrics.Avg),
		HighRelevanceCount:   state.IntPtr(metrics.HighCount),
		MediumRelevanceCount: state.IntPtr(metrics.MediumCount),
		CurrentNode:          state.StrPtr(state.NodeEvaluateRelevance),
		LLMCalls:             llmCalls,
	}, nil
}

func evaluationsFromScores(docs []state.Document) []relevance.Evaluation {
	evaluations := make([]relevance.Evaluation, 0, len(docs))
	for _, doc := range docs {
		score := 0.0
		switch {
		case doc.CombinedScore != nil:
			score = *doc.CombinedScore
		case doc.LLMRelevanceScore != nil:
			score = *doc.LLMRelevanceScore
		case doc.EmbeddingScore != nil:
			score = *doc.EmbeddingScore
		}
		evaluations = append(evaluations, relevance.Evaluation{
			Score: score,
			Level: relevance.ScoreToLevel(score),
		})
	}
	return evaluations
}

// rewriteQueryNode bumps the retry counter even when the rewrite itself
// fails, so the correction loop always terminates.
func (o *Orchestrator) rewriteQueryNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	newQuery, _, err := o.rewriter.RewriteAuto(ctx, s.EffectiveQuery(), s.RetryCount, s.RewrittenQueries, nil)

	d := &state.Delta{
		RetryDelta:          1,
		CorrectionTriggered: state.BoolPtr(true),
		CurrentNode:         state.StrPtr(state.NodeRewriteQuery),
		LLMCalls:            1,
	}
	if err != nil {
		d.Errors = []string{fmt.Sprintf("rewrite error: %v", err)}
		return d, nil
	}
	d.RefinedQuery = state.StrPtr(newQuery)
	d.RewrittenQueries = []string{newQuery}
	return d, nil
}

func (o *Orchestrator) webSearchNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	d := &state.Delta{
		WebSearchTriggered: state.BoolPtr(true),
		NeedsDisclaimer:    state.BoolPtr(true),
		CurrentNode:        state.StrPtr(state.NodeWebSearch),
	}

	results, err := o.webAgent.Search(ctx, s.EffectiveQuery(), s.DetectedDomains)
	if err != nil {
		d.WebResults = []state.Document{}
		d.WebConfidence = state.FloatPtr(0)
		d.Errors = []string{fmt.Sprintf("web search error: %v", err)}
		return d, nil
	}

	confidence := 0.0
	if len(results) > 0 {
		var sum float64
		for _, doc := range results {
			if doc.CombinedScore != nil {
				sum += *doc.CombinedScore
			}
		}
		confidence = sum / float64(len(results))
	}

	d.WebResults = results
	d.WebConfidence = state.FloatPtr(confidence)
	return d, nil
}

// generateResponseNode answers from sub-answers via synthesis when the query
// was decomposed, otherwise straight from the retrieved documents. The
// original query, not the refined one, is answered.
func (o *Orchestrator) generateResponseNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	if len(s.SubAnswers) > 0 {
		synthesis := o.decomposer.Synthesize(ctx, s.Query, s.SubAnswers, s.SynthesisGuide)
		return &state.Delta{
			GeneratedResponse: state.StrPtr(synthesis.Response),
			Sources:           synthesis.Sources,
			CurrentNode:       state.StrPtr(state.NodeGenerateResponse),
			LLMCalls:          1,
		}, nil
	}

	output, err := o.generator.Generate(ctx, s.Query, s.RetrievedDocs, s.WebResults)
	if err != nil {
		return &state.Delta{
			GeneratedResponse: state.StrPtr(""),
			CurrentNode:       state.StrPtr(state.NodeGenerateResponse),
			LLMCalls:          1,
			Errors:            []string{fmt.Sprintf("generation error: %v", err)},
		}, nil
	}

	return &state.Delta{
		GeneratedResponse: state.StrPtr(output.Response),
		Sources:           output.Sources,
		CurrentNode:       state.StrPtr(state.NodeGenerateResponse),
		LLMCalls:          1,
	}, nil
}

// evaluateQualityNode closes the run. A web-search-backed answer always
// carries the disclaimer regardless of measured quality.
func (o *Orchestrator) evaluateQualityNode(ctx context.Context, s *state.State) (*state.Delta, error) {
	eval, err := o.qualityEval.Evaluate(ctx, s.Query, s.GeneratedResponse, s.Sources)
	llmCalls := 1
	if err != nil {
		o.logger.Printf("[ERROR] quality evaluation failed, using heuristic: %v", err)
		eval = o.qualityEval.QuickEvaluate(s.GeneratedResponse, s.Sources, s.AvgRelevance)
		llmCalls = 0
	}

	needsDisclaimer := eval.NeedsDisclaimer
	if s.WebSearchTriggered {
		needsDisclaimer = true
	}

	return &state.Delta{
		ResponseConfidence: state.FloatPtr(eval.Confidence),
		NeedsDisclaimer:    state.BoolPtr(needsDisclaimer),
		CurrentNode:        state.StrPtr(state.NodeEvaluateQuality),
		LLMCalls:           llmCalls,
		Finished:           true,
	}, nil
}

// answerSubQuestion runs the per-sub-question pipeline: correction loop, then
// web fallback if the loop demands it, then generation.
func (o *Orchestrator) answerSubQuestion(ctx context.Context, question string) (string, []string, float64, []state.Document, error) {
	loop := o.corrective.Run(ctx, question)

	var webResults []state.Document
	if len(loop.Documents) == 0 {
		results, err := o.webAgent.Search(ctx, loop.FinalQuery, nil)
		if err != nil {
			o.logger.Printf("[ERROR] sub-question web fallback failed: %v", err)
		}
		webResults = results
	}

	if len(loop.Documents) == 0 && len(webResults) == 0 {
		return "", nil, 0, nil, fmt.Errorf("no evidence found for sub-question")
	}

	output, err := o.generator.Generate(ctx, question, loop.Documents, webResults)
	if err != nil {
		return "", nil, 0, nil, err
	}

	confidence := loop.Metrics.Avg
	if confidence == 0 && len(webResults) > 0 {
		confidence = 0.5
	}
	return output.Response, output.Sources, confidence, loop.Documents, nil
}
