// internal/workers/ai-conversation/llm-synthesis/generator.go
package llmsynthesis

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"smartdm-service/internal/common/config"
	apperrors "smartdm-service/internal/common/errors"
)

var (
	ErrGenerationTimeout    = errors.New("GENERATION_TIMEOUT")
	ErrGenerationFailed     = errors.New("GENERATION_FAILED")
	ErrGenerationAuthFailed = errors.New("GENERATION_AUTH_FAILED")
)

// Generator produces answer text for a composed prompt with the given model.
type Generator interface {
	Generate(ctx context.Context, model string, prompt PromptEnvelope) (string, error)
}

// NewGenerator builds the Generator for the configured provider.
func NewGenerator(ctx context.Context, cfg *Config, client *http.Client) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiGenerator(ctx, cfg, client)
	case config.ProviderOpenAI, "":
		return NewOpenAIGenerator(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// ErrorCode returns the taxonomy code for a generation error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrGenerationAuthFailed):
		return "GENERATION_AUTH_FAILED"
	case errors.Is(err, ErrGenerationTimeout):
		return "GENERATION_TIMEOUT"
	case errors.Is(err, ErrGenerationFailed):
		return "GENERATION_FAILED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// ToStandardError maps a generation error onto the service error taxonomy.
func ToStandardError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrGenerationAuthFailed):
		return apperrors.NewGenerationAuthFailedError(err)
	case errors.Is(err, ErrGenerationTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewGenerationTimeoutError(err)
	default:
		return apperrors.NewGenerationFailedError(err)
	}
}

// retryableStatus reports whether an upstream status is worth another attempt.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func authStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
