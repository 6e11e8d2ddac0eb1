// internal/workers/knowledge/normalize-document/config.go
package normalizedocument

import (
	"strings"

	"smartdm-service/internal/common/config"
)

type Config struct {
	Backend        string
	URL            string
	Index          string
	DocumentID     string
	BannedPrefixes []string // lower-cased
	MaxBlocks      int
}

func LoadConfig(cfg *config.Config) *Config {
	doc := cfg.Sources.Document
	banned := make([]string, 0, len(doc.BannedPrefixes))
	for _, p := range doc.BannedPrefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			banned = append(banned, p)
		}
	}
	return &Config{
		Backend:        doc.Backend,
		URL:            doc.URL,
		Index:          doc.Index,
		DocumentID:     doc.DocumentID,
		BannedPrefixes: banned,
		MaxBlocks:      1000,
	}
}
