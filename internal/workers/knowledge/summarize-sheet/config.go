// internal/workers/knowledge/summarize-sheet/config.go
package summarizesheet

import (
	"strings"

	"smartdm-service/internal/common/config"
)

type Config struct {
	Backend string

	SheetID            string
	Range              string
	APIKey             string
	ServiceAccountJSON string // inline JSON or a path to the key file
	BaseURL            string // empty uses the public Sheets endpoint

	Table   string
	CSVPath string

	ExcludedHeaders map[string]struct{}
}

func LoadConfig(cfg *config.Config) *Config {
	sheet := cfg.Sources.Sheet
	return &Config{
		Backend:            sheet.Backend,
		SheetID:            sheet.SheetID,
		Range:              sheet.Range,
		APIKey:             sheet.APIKey,
		ServiceAccountJSON: sheet.ServiceAccountJSON,
		BaseURL:            sheet.BaseURL,
		Table:              sheet.Table,
		CSVPath:            sheet.Path,
		ExcludedHeaders:    headerSet(sheet.ExcludedHeaders),
	}
}

func headerSet(headers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	return set
}
