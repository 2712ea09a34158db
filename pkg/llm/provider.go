package llm

import "context"

// Message is one turn of a conversation in a provider-neutral shape. Role is
// "system", "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// Options tunes a single call; zero values mean provider defaults.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

type Option func(*Options)

func WithTemperature(temp float64) Option {
	return func(o *Options) { o.Temperature = temp }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// LLMProvider is the text-generation backend behind case writing,
// interrogations and visit narration. Implementations must be safe for
// concurrent use: the generation pipeline fans out calls.
type LLMProvider interface {
	// Chat runs a multi-turn exchange and returns the assistant's reply.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate answers a single standalone prompt.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
