// internal/workers/ai-conversation/llm-synthesis/openai.go
package llmsynthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIGenerator talks to an OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	config *Config
	client *http.Client
}

func NewOpenAIGenerator(config *Config, client *http.Client) *OpenAIGenerator {
	if client == nil {
		// No client timeout; the caller's context bounds every attempt.
		client = &http.Client{}
	}
	return &OpenAIGenerator{config: config, client: client}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, model string, prompt PromptEnvelope) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrGenerationTimeout, ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

		resp, lastErr = g.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			status := resp.StatusCode
			detail := readErrorDetail(resp.Body)
			resp.Body.Close()
			resp = nil

			if authStatus(status) {
				return "", fmt.Errorf("%w: status %d: %s", ErrGenerationAuthFailed, status, detail)
			}
			lastErr = fmt.Errorf("status %d: %s", status, detail)
			if !retryableStatus(status) {
				return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
			}
		}

		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrGenerationTimeout, ctx.Err())
		}
	}

	if lastErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrGenerationTimeout, lastErr)
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrGenerationFailed)
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrGenerationFailed, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrGenerationFailed)
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

// readErrorDetail pulls the upstream error message, falling back to the raw body.
func readErrorDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
