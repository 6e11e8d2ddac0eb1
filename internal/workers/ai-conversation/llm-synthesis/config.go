// internal/workers/ai-conversation/llm-synthesis/config.go
package llmsynthesis

import (
	"strings"
	"time"

	"smartdm-service/internal/common/config"
)

type Config struct {
	Provider      string
	BaseURL       string
	APIKey        string
	DefaultModel  string
	HighTierModel string
	Timeout       time.Duration
	MaxRetries    int
	MaxTokens     int
	Temperature   float64
}

func LoadConfig(cfg *config.Config) *Config {
	gen := cfg.Generation
	return &Config{
		Provider:      gen.Provider,
		BaseURL:       strings.TrimRight(gen.BaseURL, "/"),
		APIKey:        gen.APIKey,
		DefaultModel:  gen.DefaultModel,
		HighTierModel: gen.HighTierModel,
		Timeout:       time.Duration(gen.Timeout) * time.Millisecond,
		MaxRetries:    gen.MaxRetries,
		MaxTokens:     gen.MaxTokens,
		Temperature:   gen.Temperature,
	}
}

// ModelFor returns the model id for the requested tier.
func (c *Config) ModelFor(highTier bool) string {
	if highTier {
		return c.HighTierModel
	}
	return c.DefaultModel
}
