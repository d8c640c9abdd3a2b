// internal/llm/llm.go
package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/ollama/ollama/api"
)

// LLM defines the interface for language model providers
type LLM interface {

	// GenerateResponse generates a response from the LLM given a prompt
	GenerateResponse(ctx context.Context, prompt string) (string, error)

	// IsModelAvailable checks if the configured model is available
	IsModelAvailable(ctx context.Context) error
}

// IsRateLimited reports whether err says the provider throttled the request.
// Provider errors opt in with a RateLimited method; Ollama status errors are
// judged by their status code.
func IsRateLimited(err error) bool {
	var throttled interface{ RateLimited() bool }
	if errors.As(err, &throttled) {
		return throttled.RateLimited()
	}
	var status api.StatusError
	if errors.As(err, &status) {
		return status.StatusCode == http.StatusTooManyRequests
	}
	return false
}
