// internal/workers/knowledge/load-manual/config.go
package loadmanual

import "smartdm-service/internal/common/config"

type Config struct {
	Format string // "json" or "text"
	Path   string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Format: cfg.Sources.Manual.Format,
		Path:   cfg.Sources.Manual.Path,
	}
}
