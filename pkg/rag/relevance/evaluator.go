// Package relevance scores retrieved documents against the query, combining
// embedding similarity with LLM judgment.
package relevance

import (
	"context"
	"fmt"
	"log"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/state"
)

// Level thresholds, tuned for recall on small collections.
const (
	highThreshold   = 0.6
	mediumThreshold = 0.3

	// embeddingPrefilter skips the LLM call for documents whose embedding
	// similarity is already hopeless.
	embeddingPrefilter = 0.3

	maxContentLength = 2000
)

// Level classifies a relevance score.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Evaluation is the per-document scoring result.
type Evaluation struct {
	Score  float64 `json:"relevance_score"`
	Level  Level   `json:"relevance_level"`
	Reason string  `json:"reason"`
}

// Metrics aggregates evaluations for the routing decision.
type Metrics struct {
	Scores      []float64
	Avg         float64
	HighCount   int
	MediumCount int
	LowCount    int
	Sufficient  bool
}

// Evaluator runs hybrid relevance scoring.
type Evaluator struct {
	llmProvider        llm.LLMProvider
	logger             *log.Logger
	relevanceThreshold float64
}

func NewEvaluator(llmProvider llm.LLMProvider, logger *log.Logger, relevanceThreshold float64) *Evaluator {
	return &Evaluator{
		llmProvider:        llmProvider,
		logger:             logger,
		relevanceThreshold: relevanceThreshold,
	}
}

// ScoreToLevel maps a numeric score to its level.
func ScoreToLevel(score float64) Level {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Evaluate scores one document. Documents under the embedding pre-filter skip
// the LLM call and come back low. The document's LLM and combined scores are
// filled in place.
func (e *Evaluator) Evaluate(ctx context.Context, query string, doc *state.Document) (*Evaluation, error) {
	if doc.EmbeddingScore != nil && *doc.EmbeddingScore < embeddingPrefilter {
		return &Evaluation{
			Score:  *doc.EmbeddingScore,
			Level:  LevelLow,
			Reason: "Low embedding similarity - document unlikely to be relevant",
		}, nil
	}

	content := doc.Content
	if len(content) > maxContentLength {
		content = content[:maxContentLength]
	}
	source := doc.Metadata.Source
	if source == "" {
		source = "unknown"
	}

	prompt := fmt.Sprintf(constant.RelevanceEvaluationPrompt, query, source, content)

	var result Evaluation
	err := llm.GenerateStructured(ctx, e.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are an expert at evaluating document relevance. Be precise and objective."),
	)
	if err != nil {
		return nil, fmt.Errorf("relevance evaluation failed: %w", err)
	}

	result.Level = ScoreToLevel(result.Score)
	doc.LLMRelevanceScore = state.FloatPtr(result.Score)
	doc.CombineScores()
	return &result, nil
}

// EvaluateBatch scores documents sequentially. A failed evaluation is logged
// and scored as low so one bad LLM response cannot sink the batch.
func (e *Evaluator) EvaluateBatch(ctx context.Context, query string, docs []state.Document) []Evaluation {
	evaluations := make([]Evaluation, 0, len(docs))
	for i := range docs {
		eval, err := e.Evaluate(ctx, query, &docs[i])
		if err != nil {
			e.logger.Printf("[ERROR] relevance evaluation for doc %d failed: %v", i, err)
			eval = &Evaluation{Score: 0.0, Level: LevelLow, Reason: "evaluation error"}
		}
		evaluations = append(evaluations, *eval)
	}
	return evaluations
}

// CalculateMetrics aggregates a batch of evaluations. Sufficiency is the
// relaxed rule: one high doc, or a medium doc plus a passing average, or a
// passing average alone.
func (e *Evaluator) CalculateMetrics(evaluations []Evaluation) Metrics {
	if len(evaluations) == 0 {
		return Metrics{Scores: []float64{}}
	}

	m := Metrics{Scores: make([]float64, 0, len(evaluations))}
	var sum float64
	for _, eval := range evaluations {
		m.Scores = append(m.Scores, eval.Score)
		sum += eval.Score
		switch eval.Level {
		case LevelHigh:
			m.HighCount++
		case LevelMedium:
			m.MediumCount++
		default:
			m.LowCount++
		}
	}
	m.Avg = sum / float64(len(evaluations))
	m.Sufficient = m.HighCount >= 1 ||
		(m.MediumCount >= 1 && m.Avg >= e.relevanceThreshold) ||
		m.Avg >= e.relevanceThreshold
	return m
}
