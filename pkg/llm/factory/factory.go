package factory

import (
	"fmt"

	"corrective-rag-be/pkg/llm"
	"corrective-rag-be/pkg/llm/ollama"
	"corrective-rag-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an api key")
		}
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
