package factory

import (
	"fmt"

	"ai-casefile-be/pkg/imagen"
	"ai-casefile-be/pkg/imagen/openai"
)

func NewImageProvider(providerType, modelName, apiKey string) (imagen.ImageProvider, error) {
	switch providerType {
	case "openai":
		return openai.NewOpenAIImageProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", providerType)
	}
}
