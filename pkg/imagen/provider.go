package imagen

import "context"

// ImageProvider defines the contract for any image generation backend.
// Implementations return raw encoded image bytes (PNG unless noted).
type ImageProvider interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}
