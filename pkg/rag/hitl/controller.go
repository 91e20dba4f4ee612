// Package hitl implements the human-in-the-loop clarification flow: deciding
// when to ask, generating the question with options, and folding the user's
// answer back into the query.
package hitl

import (
	"context"
	"fmt"
	"log"
	"strings"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/state"
)

// clarityFloor is the clarity confidence below which an ambiguous query
// triggers clarification.
const clarityFloor = 0.8

// Clarification is one question with selectable options.
type Clarification struct {
	Question string   `json:"clarification_question"`
	Options  []string `json:"options"`
}

// Controller drives the clarification round trip.
type Controller struct {
	llmProvider     llm.LLMProvider
	logger          *log.Logger
	enabled         bool
	maxInteractions int
}

func NewController(llmProvider llm.LLMProvider, logger *log.Logger, enabled bool, maxInteractions int) *Controller {
	return &Controller{
		llmProvider:     llmProvider,
		logger:          logger,
		enabled:         enabled,
		maxInteractions: maxInteractions,
	}
}

// ShouldClarify decides whether to interrupt for clarification. Disabled
// deployments never clarify; otherwise the interaction cap applies first, then
// either detected ambiguity or low clarity triggers the interrupt.
func (c *Controller) ShouldClarify(isAmbiguous bool, clarityConfidence float64, interactionCount int) bool {
	if !c.enabled {
		return false
	}
	if interactionCount >= c.maxInteractions {
		return false
	}
	return isAmbiguous || clarityConfidence < clarityFloor
}

// GenerateClarification produces the question shown to the user. On LLM
// failure it falls back to a canned question and options keyed by the
// ambiguity type.
func (c *Controller) GenerateClarification(
	ctx context.Context,
	query string,
	ambiguityType state.AmbiguityType,
	clarityConfidence float64,
	detectedDomains []string,
) *Clarification {
	prompt := fmt.Sprintf(constant.ClarificationPrompt,
		query,
		string(ambiguityType),
		clarityConfidence,
		strings.Join(detectedDomains, ", "),
	)

	var result Clarification
	err := llm.GenerateStructured(ctx, c.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are a clarification specialist. Generate one clear question with options in Korean."),
	)
	if err != nil || result.Question == "" || len(result.Options) < 2 {
		if err != nil {
			c.logger.Printf("[ERROR] clarification generation failed, using fallback: %v", err)
		}
		return defaultClarification(ambiguityType)
	}
	return &result
}

// RefineQuery merges the user's clarification answer into the original query.
// The fallback is a plain parenthesized concatenation.
func (c *Controller) RefineQuery(ctx context.Context, originalQuery, clarificationQuestion, userResponse string) string {
	userResponse = strings.TrimSpace(userResponse)
	if userResponse == "" {
		return originalQuery
	}

	prompt := fmt.Sprintf(constant.RefineQueryPrompt, originalQuery, clarificationQuestion, userResponse)

	var result struct {
		RefinedQuery string `json:"refined_query"`
	}
	err := llm.GenerateStructured(ctx, c.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are a query refinement specialist."),
	)
	if err != nil || strings.TrimSpace(result.RefinedQuery) == "" {
		if err != nil {
			c.logger.Printf("[ERROR] query refinement failed, using concatenation fallback: %v", err)
		}
		return fmt.Sprintf("%s (%s)", originalQuery, userResponse)
	}
	return result.RefinedQuery
}

func defaultClarification(ambiguityType state.AmbiguityType) *Clarification {
	switch ambiguityType {
	case state.AmbiguityMultipleInterpretation:
		return &Clarification{
			Question: constant.ClarifyQuestionMultipleInterpretation,
			Options:  constant.ClarifyOptionsMultipleInterpretation,
		}
	case state.AmbiguityMissingContext:
		return &Clarification{
			Question: constant.ClarifyQuestionMissingContext,
			Options:  constant.ClarifyOptionsMissingContext,
		}
	case state.AmbiguityVagueTerm:
		return &Clarification{
			Question: constant.ClarifyQuestionVagueTerm,
			Options:  constant.ClarifyOptionsVagueTerm,
		}
	default:
		return &Clarification{
			Question: constant.ClarifyQuestionGeneric,
			Options:  constant.ClarifyOptionsGeneric,
		}
	}
}
