package llm

import (
	"context"
	"encoding/json"
	"strings"

	"corrective-rag-be/pkg/rag/ragerror"
)

// GenerateStructured prompts the model and decodes its reply into out.
// Models rarely return bare JSON, so the reply is scanned for the first
// top-level object before unmarshalling. A malformed reply yields a
// ParsingError so callers can fall back to deterministic defaults.
func GenerateStructured(ctx context.Context, provider LLMProvider, prompt string, out interface{}, options ...Option) error {
	options = append(options, WithJSONMode())
	response, err := provider.Generate(ctx, prompt, options...)
	if err != nil {
		return err
	}

	jsonContent := ExtractJSON(response)
	if err := json.Unmarshal([]byte(jsonContent), out); err != nil {
		return ragerror.NewParsingError(response, err)
	}
	return nil
}

// ExtractJSON isolates JSON content from a model response that may be wrapped
// in prose or markdown fences.
func ExtractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return response
	}

	return response[startIdx : endIdx+1]
}
