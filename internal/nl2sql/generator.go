package nl2sql

import "context"

// Generator is the untrusted text-generation oracle. Its output is opaque text
// and must pass the full normalize/safety/access sequence before execution.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
