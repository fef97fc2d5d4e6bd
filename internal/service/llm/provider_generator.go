package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	llmprovider "github.com/haowjy/meridian-llm-go"

	"idfbuilder/internal/domain"
)

// ProviderGenerator adapts a meridian-llm-go provider to TextGenerator.
// The library speaks in content blocks; only text blocks are kept.
type ProviderGenerator struct {
	provider llmprovider.Provider
	model    string
	timeout  time.Duration
}

// NewProviderGenerator wraps provider. A zero timeout leaves the caller's
// context deadline as the only bound.
func NewProviderGenerator(provider llmprovider.Provider, model string, timeout time.Duration) *ProviderGenerator {
	return &ProviderGenerator{
		provider: provider,
		model:    model,
		timeout:  timeout,
	}
}

// Name returns the provider name.
func (g *ProviderGenerator) Name() string {
	return g.provider.Name().String()
}

// Generate sends prompt as one user message.
func (g *ProviderGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text := prompt
	req := &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{
			{
				Role: "user",
				Blocks: []*llmprovider.Block{
					{BlockType: "text", Sequence: 0, TextContent: &text},
				},
			},
		},
		Model: g.model,
	}

	resp, err := g.provider.GenerateResponse(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrUpstream, g.Name(), err)
	}

	var sb strings.Builder
	for _, block := range resp.Blocks {
		if block == nil || block.BlockType != "text" || block.TextContent == nil {
			continue
		}
		sb.WriteString(*block.TextContent)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: %s returned no text", domain.ErrMalformedResponse, g.Name())
	}
	return sb.String(), nil
}
