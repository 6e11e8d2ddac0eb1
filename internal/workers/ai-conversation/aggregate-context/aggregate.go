package aggregatecontext

import (
	"strings"
	"unicode/utf8"

	"smartdm-service/internal/common/metrics"
	"smartdm-service/internal/models"
	loadmanual "smartdm-service/internal/workers/knowledge/load-manual"
)

// Aggregator assembles the labeled, bounded context from the three source
// texts. It holds no per-request state.
type Aggregator struct {
	config *Config
}

func NewAggregator(config *Config) *Aggregator {
	return &Aggregator{config: config}
}

// Aggregate truncates each section independently and joins them under their
// labels. Only a missing manual sets ManualMissing; sheet and document
// failures are already descriptive text and pass through.
func (a *Aggregator) Aggregate(manual, sheetSummary, docText, question string) Result {
	result := Result{
		Question:      strings.TrimSpace(question),
		ManualMissing: IsManualMissing(manual),
	}

	sections := []struct {
		source string
		label  string
		text   string
	}{
		{models.SourceManual, ManualLabel, manual},
		{models.SourceSheet, SheetLabel, sheetSummary},
		{models.SourceDocument, DocumentLabel, docText},
	}

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		text, cut := Truncate(s.text, a.config.TruncationLimit)
		if cut {
			result.Truncated = append(result.Truncated, s.source)
			metrics.ContextTruncationsTotal.WithLabelValues(s.source).Inc()
		}
		parts = append(parts, s.label+"\n"+text)
	}

	result.Context = strings.Join(parts, sectionSeparator)
	return result
}

// IsManualMissing reports whether the manual text is the missing sentinel or
// blank.
func IsManualMissing(manual string) bool {
	trimmed := strings.TrimSpace(manual)
	return trimmed == "" || trimmed == loadmanual.MissingManual
}

// Truncate keeps the first limit runes and appends TruncationMarker when the
// text is longer than limit. A non-positive limit disables truncation.
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:limit]) + TruncationMarker, true
}
