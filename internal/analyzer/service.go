package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/BerylCAtieno/kicks-match/internal/models"
)

// Service runs one shoe analysis: credential check, upstream call, reply parsing.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	generator Generator
	apiKey    func() string
	prompt    string
	timeout   time.Duration
}

// NewService wires a generator with a credential lookup. A zero timeout
// leaves the upstream call bounded only by the caller's context.
func NewService(generator Generator, apiKey func() string, timeout time.Duration) *Service {
	return &Service{
		generator: generator,
		apiKey:    apiKey,
		prompt:    buildPrompt(),
		timeout:   timeout,
	}
}

// Analyze describes the shoe in img. Once the upstream call succeeds a
// description is always returned, falling back to models.FallbackShoe when
// the reply holds no usable JSON.
func (s *Service) Analyze(ctx context.Context, img Image) (*models.ShoeDescription, error) {
	key := s.apiKey()
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(ctx, key, GenerateRequest{Prompt: s.prompt, Image: img})
	if err != nil {
		return nil, fmt.Errorf("failed to generate description: %w", err)
	}

	shoe, ok := ExtractShoe(text)
	if !ok {
		log.Printf("WARN: No parseable JSON in model reply (%d chars), using fallback description", len(text))
		shoe = models.FallbackShoe()
	}

	return &shoe, nil
}
