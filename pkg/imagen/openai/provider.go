package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	"ai-casefile-be/pkg/imagen"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIImageProvider struct {
	client *openai.Client
	model  string
}

var _ imagen.ImageProvider = &OpenAIImageProvider{}

func NewOpenAIImageProvider(apiKey, model string) *OpenAIImageProvider {
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAIImageProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *OpenAIImageProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Model:          p.model,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no image data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}
