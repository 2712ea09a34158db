package factory

import (
	"fmt"

	"ai-casefile-be/pkg/llm"
	"ai-casefile-be/pkg/llm/huggingface"
	"ai-casefile-be/pkg/llm/ollama"
	"ai-casefile-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, ollamaBaseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(apiKey, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, "", modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
