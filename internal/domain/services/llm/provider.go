package llm

import "context"

// TextGenerator is the seam between the form builder and a language model.
// A generator receives a single user prompt and returns the model's raw
// text answer; callers are responsible for extracting structured values.
type TextGenerator interface {
	// Generate returns the model's raw text for prompt.
	// Errors wrap domain.ErrUpstreamUnavailable when the provider cannot be
	// reached or is not configured, and domain.ErrUpstream when it answered
	// with a failure.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name (e.g., "openai", "perplexity")
	Name() string
}

// Generators groups the two generation roles. Document fills a whole form
// from a seed title; Field regenerates one section and may browse the web.
type Generators struct {
	Document TextGenerator
	Field    TextGenerator
}
