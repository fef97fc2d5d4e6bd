package llm

import (
	"context"
	"fmt"

	"idfbuilder/internal/domain"
)

// Unavailable stands in for a provider that could not be configured.
// Every call fails with the setup error and makes no request.
type Unavailable struct {
	name string
	err  error
}

// NewUnavailable creates a generator that always fails with err. A nil err
// becomes a bare ErrUpstreamUnavailable.
func NewUnavailable(name string, err error) *Unavailable {
	if err == nil {
		err = fmt.Errorf("%w: %s", domain.ErrUpstreamUnavailable, name)
	}
	return &Unavailable{name: name, err: err}
}

func (u *Unavailable) Name() string { return u.name }

func (u *Unavailable) Generate(ctx context.Context, prompt string) (string, error) {
	return "", u.err
}
