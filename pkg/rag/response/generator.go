// Package response builds the final answer from retrieved evidence.
package response

import (
	"context"
	"fmt"
	"log"
	"strings"

	"corrective-rag-be/internal/constant"
	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/rag/state"
)

// Output is the structured generation result.
type Output struct {
	Response          string   `json:"response"`
	Sources           []string `json:"sources"`
	HasSufficientInfo bool     `json:"has_sufficient_info"`
}

// Generator turns documents into an answer.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate answers the query from internal documents plus optional web
// results. The answer is grounded only in the supplied context.
func (g *Generator) Generate(ctx context.Context, query string, documents, webResults []state.Document) (*Output, error) {
	contextText := formatDocuments(documents)
	if len(webResults) > 0 {
		contextText += "\n\n## 웹 검색 결과\n" + formatDocuments(webResults)
	}

	prompt := fmt.Sprintf(constant.ResponseGenerationPrompt, query, contextText)

	var result Output
	err := llm.GenerateStructured(ctx, g.llmProvider, prompt, &result,
		llm.WithSystemPrompt("You are a helpful assistant that answers questions based on the provided documents. Always cite your sources."),
	)
	if err != nil {
		return nil, fmt.Errorf("response generation failed: %w", err)
	}

	if len(result.Sources) == 0 {
		result.Sources = ExtractSources(append(documents, webResults...))
	}
	return &result, nil
}

// ExtractSources collects distinct source references in document order.
func ExtractSources(documents []state.Document) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, doc := range documents {
		src := doc.Metadata.Source
		if src != "" && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources
}

func formatDocuments(documents []state.Document) string {
	if len(documents) == 0 {
		return "검색된 문서가 없습니다."
	}

	var parts []string
	for i, doc := range documents {
		source := doc.Metadata.Source
		if source == "" {
			source = "unknown"
		}
		header := fmt.Sprintf("[문서 %d] 출처: %s", i+1, source)
		if doc.Metadata.Title != "" {
			header += " - " + doc.Metadata.Title
		}
		parts = append(parts, header+"\n"+doc.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}
