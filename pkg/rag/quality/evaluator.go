// Package quality scores generated responses and decides whether a
// disclaimer is warranted.
package quality

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/pkg/llm"
)

// Disclaimer thresholds and confidence weights.
const (
	confidenceThreshold   = 0.8
	completenessThreshold = 0.6
	accuracyThreshold     = 0.7

	completenessWeight = 0.4
	accuracyWeight     = 0.4
	clarityWeight      = 0.2
)

// Result is one quality evaluation.
type Result struct {
	Completeness    float64 `json:"completeness"`
	Accuracy        float64 `json:"accuracy"`
	Clarity         float64 `json:"clarity"`
	Confidence      float64 `json:"confidence"`
	NeedsDisclaimer bool    `json:"needs_disclaimer"`
}

// Evaluator scores responses with the LLM, with a heuristic fallback.
type Evaluator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewEvaluator(llmProvider llm.LLMProvider, logger *log.Logger) *Evaluator {
	return &Evaluator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Confidence computes the weighted confidence score.
func Confidence(completeness, accuracy, clarity float64) float64 {
	return completeness*completenessWeight + accuracy*accuracyWeight + clarity*clarityWeight
}

// NeedsDisclaimer applies the disclaimer thresholds.
func NeedsDisclaimer(confidence, completeness, accuracy float64) bool {
	return confidence < confidenceThreshold ||
		completeness < completenessThreshold ||
		accuracy < accuracyThreshold
}

// Evaluate scores a response. An empty response scores zero across the board.
// The confidence reported by the LLM is overridden when it disagrees with the
// weighted formula by more than 0.1, and the disclaimer decision is always
// recomputed from the thresholds.
func (e *Evaluator) Evaluate(ctx context.Context, query, responseText string, sources []string) (*Result, error) {
	if strings.TrimSpace(responseText) == "" {
		return &Result{NeedsDisclaimer: true}, nil
	}

	sourcesText := "No sources provided"
	if len(sources) > 0 {
		var lines []string
		for _, s := range sources {
			lines = append(lines, "- "+s)
		}
		sourcesText = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(constant.QualityEvaluationPrompt, query, responseText, sourcesText)

	var result Result
	err := llm.GenerateStructured(ctx, e.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are an expert at evaluating response quality. Be objective and precise."),
	)
	if err != nil {
		return nil, fmt.Errorf("quality evaluation failed: %w", err)
	}

	calculated := Confidence(result.Completeness, result.Accuracy, result.Clarity)
	if math.Abs(result.Confidence-calculated) > 0.1 {
		result.Confidence = calculated
	}
	result.NeedsDisclaimer = NeedsDisclaimer(result.Confidence, result.Completeness, result.Accuracy)
	return &result, nil
}

// QuickEvaluate is the LLM-free heuristic used when evaluation must not cost
// a model call: base scores adjusted by response length, source count and
// average retrieval relevance.
func (e *Evaluator) QuickEvaluate(responseText string, sources []string, avgRelevance float64) *Result {
	completeness, accuracy, clarity := 0.5, 0.5, 0.5

	switch n := len(responseText); {
	case n > 500:
		completeness += 0.2
		clarity += 0.1
	case n > 200:
		completeness += 0.1
	case n < 50:
		completeness -= 0.2
		clarity -= 0.1
	}

	if len(sources) >= 2 {
		accuracy += 0.2
	} else if len(sources) == 1 {
		accuracy += 0.1
	}

	if avgRelevance >= 0.8 {
		accuracy += 0.2
		completeness += 0.1
	} else if avgRelevance >= 0.6 {
		accuracy += 0.1
	}

	completeness = clamp01(completeness)
	accuracy = clamp01(accuracy)
	clarity = clamp01(clarity)

	confidence := Confidence(completeness, accuracy, clarity)
	return &Result{
		Completeness:    completeness,
		Accuracy:        accuracy,
		Clarity:         clarity,
		Confidence:      confidence,
		NeedsDisclaimer: NeedsDisclaimer(confidence, completeness, accuracy),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
