package analyzer

import "context"

// GenerateRequest is one multimodal prompt: instruction text plus an inline image.
type GenerateRequest struct {
	Prompt string
	Image  Image
}

// Generator sends a prompt to the model service and returns the reply text.
// An empty string with a nil error means the service answered without text.
type Generator interface {
	Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error)
}

// GenerationSettings keeps the output machine-parseable: low temperature, bounded length.
type GenerationSettings struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}
