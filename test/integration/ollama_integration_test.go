package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"ai-casefile-be/pkg/llm"
	"ai-casefile-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
)

// Exercises the Ollama provider against a locally running daemon. Set
// OLLAMA_BASE_URL (and optionally OLLAMA_MODEL) to enable.
func TestOllamaProvider(t *testing.T) {
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_BASE_URL not set")
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3"
	}

	provider := ollama.NewOllamaProvider(baseURL, model)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	t.Run("Generate", func(t *testing.T) {
		out, err := provider.Generate(ctx, "Reply with the single word: ready")
		assert.NoError(t, err)
		assert.NotEmpty(t, out)
	})

	t.Run("Chat", func(t *testing.T) {
		out, err := provider.Chat(ctx, []llm.Message{
			{Role: "system", Content: "You are a terse assistant."},
			{Role: "user", Content: "Say hello."},
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, out)
	})
}
