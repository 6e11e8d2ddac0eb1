// internal/workers/ai-conversation/llm-synthesis/gemini.go
package llmsynthesis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	config *Config
	client *genai.Client
}

func NewGeminiGenerator(ctx context.Context, config *Config, httpClient *http.Client) (*GeminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{config: config, client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, model string, prompt PromptEnvelope) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.config.Temperature)),
	}
	if g.config.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(g.config.MaxTokens)
	}

	var resp *genai.GenerateContentResponse
	var err error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrGenerationTimeout, ctx.Err())
			}
		}

		resp, err = g.client.Models.GenerateContent(ctx, model, genai.Text(prompt.User), genConfig)
		if err == nil {
			break
		}
		err = classifyGeminiError(ctx, err)
		if !errors.Is(err, ErrGenerationFailed) || !retryableGeminiError(err) {
			return "", err
		}
	}
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return text, nil
}

func classifyGeminiError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrGenerationTimeout, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && authStatus(apiErr.Code) {
		return fmt.Errorf("%w: %w", ErrGenerationAuthFailed, err)
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

// retryableGeminiError retries transport failures and 429/5xx answers.
func retryableGeminiError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	return true
}
