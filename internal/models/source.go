// internal/models/source.go
package models

import "context"

// Names of the three knowledge sources, used as log fields, metric labels
// and cache keys.
const (
	SourceManual   = "manual"
	SourceSheet    = "sheet"
	SourceDocument = "document"
)

// SourceStatus distinguishes genuine content from the degraded states a
// knowledge source may report instead of failing.
type SourceStatus string

const (
	SourceOK          SourceStatus = "ok"
	SourceEmpty       SourceStatus = "empty"
	SourceUnavailable SourceStatus = "unavailable"
	SourceMissing     SourceStatus = "missing"
)

// SourceResult is what a knowledge source returns for one fetch. Text is
// always safe to embed in a prompt: for degraded states it holds the
// descriptive failure string.
type SourceResult struct {
	Source string       `json:"source"`
	Text   string       `json:"text"`
	Status SourceStatus `json:"status"`
}

// OK reports whether the result holds real content.
func (r SourceResult) OK() bool {
	return r.Status == SourceOK
}

// KnowledgeSource is the adapter interface every source backend satisfies.
type KnowledgeSource interface {
	Name() string
	Fetch(ctx context.Context) SourceResult
}
