package loadmanual

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"smartdm-service/internal/common/config"
	"smartdm-service/internal/common/validation"
	"smartdm-service/internal/models"
)

var (
	ErrManualFormat = errors.New("MANUAL_FORMAT_INVALID")
	ErrManualEmpty  = errors.New("MANUAL_EMPTY")
)

var schema = validation.MustCompile(manualSchema)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Source reads the consultation manual from disk on every call.
type Source struct {
	config *Config
	logger Logger
}

func NewSource(config *Config, log Logger) *Source {
	return &Source{
		config: config,
		logger: log.With(map[string]interface{}{
			"component": "manual-source",
			"format":    config.Format,
		}),
	}
}

func (s *Source) Name() string { return models.SourceManual }

// Load returns the rendered manual or MissingManual.
func (s *Source) Load(ctx context.Context) string {
	return s.Fetch(ctx).Text
}

// Fetch never fails: any problem collapses to the MissingManual sentinel
// with status "missing".
func (s *Source) Fetch(_ context.Context) models.SourceResult {
	text, err := s.load()
	if err != nil {
		s.logger.Warn("manual unavailable", map[string]interface{}{
			"path":  s.config.Path,
			"error": err.Error(),
		})
		return models.SourceResult{Source: models.SourceManual, Text: MissingManual, Status: models.SourceMissing}
	}
	return models.SourceResult{Source: models.SourceManual, Text: text, Status: models.SourceOK}
}

func (s *Source) load() (string, error) {
	raw, err := os.ReadFile(s.config.Path)
	if err != nil {
		return "", fmt.Errorf("read manual: %w", err)
	}

	var text string
	switch s.config.Format {
	case config.ManualFormatText:
		text = strings.TrimSpace(string(raw))
	default:
		entries, err := ParseEntries(raw)
		if err != nil {
			return "", err
		}
		text = Render(entries)
	}

	if text == "" {
		return "", ErrManualEmpty
	}
	return text, nil
}

// ParseEntries decodes a JSON manual, keeping the order entries appear in the
// file for both the list and the mapping shape.
func ParseEntries(raw []byte) ([]Entry, error) {
	result, err := schema.ValidateBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManualFormat, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrManualFormat, result.Error())
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return parseList(trimmed)
	}
	return parseMapping(trimmed)
}

func parseList(raw []byte) ([]Entry, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManualFormat, err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			Question: scalarText(item["question"]),
			Answer:   scalarText(item["answer"]),
		})
	}
	return entries, nil
}

// parseMapping walks the object token by token since a Go map would lose the
// key order.
func parseMapping(raw []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManualFormat, err)
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrManualFormat, err)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrManualFormat, err)
		}
		entries = append(entries, Entry{
			Question: keyTok.(string),
			Answer:   scalarText(value),
		})
	}

	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrManualFormat, err)
	}
	return entries, nil
}

// Render formats entries as "Q: ...\nA: ..." blocks separated by a blank line.
func Render(entries []Entry) string {
	blocks := make([]string, len(entries))
	for i, e := range entries {
		blocks[i] = fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Answer)
	}
	return strings.Join(blocks, "\n\n")
}

func scalarText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
