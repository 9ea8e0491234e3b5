package llm

import "context"

// Options bound a single generation call. Temperature is kept low for
// grounding tasks; this system never does creative generation.
type Options struct {
	System          string
	Temperature     float32
	MaxOutputTokens int32
}

type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
