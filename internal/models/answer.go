// internal/models/answer.go
package models

const (
	// ModelTemplate marks answers produced from the delivery lookup table.
	ModelTemplate = "template"
	// ModelManualMissing marks the fixed fallback used when no manual is loaded.
	ModelManualMissing = "manual_missing"
)

// AnswerResult is the outcome of resolving a single question.
type AnswerResult struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
	Parsed Intent `json:"parsed"`
}

// AnswerPath names the terminal state the resolver reached.
type AnswerPath string

const (
	PathTemplateAnswered      AnswerPath = "template_answered"
	PathManualMissingFallback AnswerPath = "manual_missing_fallback"
	PathGenerated             AnswerPath = "generated"
)

// PathOf derives the terminal state from the model marker.
func PathOf(result *AnswerResult) AnswerPath {
	switch result.Model {
	case ModelTemplate:
		return PathTemplateAnswered
	case ModelManualMissing:
		return PathManualMissingFallback
	default:
		return PathGenerated
	}
}
