// Package llm wraps the text generation service behind a small interface.
package llm

import (
	"context"

	"github.com/hyperjump/rentassist/internal/models"
)

// Message is one prior turn passed to the generator.
type Message struct {
	Role    models.Role
	Content string
}

// GenerateRequest is the input of one generation call.
type GenerateRequest struct {
	System  string
	History []Message
	Message string
	// ProductIDs are the ids the reply may reference.
	ProductIDs []string
}

// Generator produces assistant text. Implementations must honor ctx
// cancellation; callers treat every error as "answer without generated text".
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}
