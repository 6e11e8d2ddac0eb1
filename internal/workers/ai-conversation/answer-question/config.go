// internal/workers/ai-conversation/answer-question/config.go
package answerquestion

import (
	"strings"
	"time"

	"smartdm-service/internal/common/config"
)

type Config struct {
	Timeout       time.Duration // per question
	JobTimeout    time.Duration
	SourceTimeout time.Duration
	DeliveryTable map[string]int
}

func LoadConfig(cfg *config.Config) *Config {
	table := make(map[string]int, len(cfg.Delivery.Table))
	for code, days := range cfg.Delivery.Table {
		table[strings.ToUpper(code)] = days
	}

	return &Config{
		Timeout:       config.GetDuration(cfg.Server.RequestTimeout),
		JobTimeout:    config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		SourceTimeout: config.GetDuration(cfg.Sources.Timeout),
		DeliveryTable: table,
	}
}
