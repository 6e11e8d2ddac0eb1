package summarizesheet

import (
	"context"

	apperrors "smartdm-service/internal/common/errors"
	"smartdm-service/internal/models"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Source summarizes the tabular record source. It never returns an error;
// failures become descriptive text with status "unavailable".
type Source struct {
	config  *Config
	fetcher RowFetcher
	logger  Logger
}

func NewSource(config *Config, fetcher RowFetcher, log Logger) *Source {
	return &Source{
		config:  config,
		fetcher: fetcher,
		logger: log.With(map[string]interface{}{
			"component": "sheet-source",
			"backend":   config.Backend,
		}),
	}
}

func (s *Source) Name() string { return models.SourceSheet }

// FetchSummary returns the row summary or a descriptive failure string.
func (s *Source) FetchSummary(ctx context.Context) string {
	return s.Fetch(ctx).Text
}

func (s *Source) Fetch(ctx context.Context) models.SourceResult {
	rows, err := s.fetcher.FetchRows(ctx)
	if err != nil {
		srcErr := apperrors.NewSourceUnavailableError(models.SourceSheet, err)
		s.logger.Warn("sheet fetch failed", map[string]interface{}{
			"errorCode": string(srcErr.Code),
			"error":     srcErr.Details,
			"retryable": srcErr.Retryable,
		})
		return models.SourceResult{
			Source: models.SourceSheet,
			Text:   failureTextPrefix + err.Error(),
			Status: models.SourceUnavailable,
		}
	}

	text, ok := Summarize(rows, s.config.ExcludedHeaders)
	if !ok {
		return models.SourceResult{Source: models.SourceSheet, Text: text, Status: models.SourceEmpty}
	}

	s.logger.Info("sheet summarized", map[string]interface{}{
		"rows": len(rows) - 1,
	})
	return models.SourceResult{Source: models.SourceSheet, Text: text, Status: models.SourceOK}
}
