package normalizedocument

import (
	"context"
	"errors"
	"strconv"

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

// Source turns the remote document into normalized text. Every failure is
// returned as descriptive text; nothing escapes as an error or a panic.
type Source struct {
	config  *Config
	fetcher BlockFetcher
	logger  Logger
}

func NewSource(config *Config, fetcher BlockFetcher, log Logger) *Source {
	return &Source{
		config:  config,
		fetcher: fetcher,
		logger: log.With(map[string]interface{}{
			"component": "document-source",
			"backend":   config.Backend,
		}),
	}
}

func (s *Source) Name() string { return models.SourceDocument }

// FetchNormalized returns the normalized document or a failure string.
func (s *Source) FetchNormalized(ctx context.Context) string {
	return s.Fetch(ctx).Text
}

func (s *Source) Fetch(ctx context.Context) (result models.SourceResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("document normalization panicked", map[string]interface{}{
				"panic": r,
			})
			result = unavailable(parseFailedPrefix + "internal error")
		}
	}()

	blocks, err := s.fetcher.FetchBlocks(ctx)
	if err != nil {
		srcErr := apperrors.NewSourceUnavailableError(models.SourceDocument, err)
		s.logger.Warn("document fetch failed", map[string]interface{}{
			"errorCode": string(srcErr.Code),
			"error":     srcErr.Details,
			"retryable": srcErr.Retryable,
		})
		return unavailable(failureText(err))
	}

	text := Normalize(blocks, s.config.BannedPrefixes)
	if text == "" {
		return models.SourceResult{Source: models.SourceDocument, Text: "", Status: models.SourceEmpty}
	}

	s.logger.Info("document normalized", map[string]interface{}{
		"blocks": len(blocks),
		"bytes":  len(text),
	})
	return models.SourceResult{Source: models.SourceDocument, Text: text, Status: models.SourceOK}
}

func failureText(err error) string {
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return notConfiguredText
	case errors.Is(err, ErrNoBody):
		return noBodyText
	case errors.As(err, &statusErr):
		return accessFailedPrefix + strconv.Itoa(statusErr.StatusCode)
	default:
		return parseFailedPrefix + err.Error()
	}
}

func unavailable(text string) models.SourceResult {
	return models.SourceResult{Source: models.SourceDocument, Text: text, Status: models.SourceUnavailable}
}
