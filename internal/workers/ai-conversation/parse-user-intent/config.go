// internal/workers/ai-conversation/parse-user-intent/config.go
package parseuserintent

import (
	"time"

	"smartdm-service/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
