// internal/workers/ai-conversation/aggregate-context/config.go
package aggregatecontext

import "smartdm-service/internal/common/config"

type Config struct {
	TruncationLimit int // runes per section
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{TruncationLimit: cfg.Context.TruncationLimit}
}
