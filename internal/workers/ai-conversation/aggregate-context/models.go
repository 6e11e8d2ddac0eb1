// internal/workers/ai-conversation/aggregate-context/models.go
package aggregatecontext

const (
	TruncationMarker = "\n(이하 생략)"

	ManualLabel   = "📘 상담 매뉴얼:"
	SheetLabel    = "📊 참고용 시트 요약:"
	DocumentLabel = "📄 참고 문서:"

	sectionSeparator = "\n\n"
)

// Result is the bounded context for one question.
type Result struct {
	Context       string
	Question      string
	ManualMissing bool
	// Truncated lists the sections that were cut, by source name.
	Truncated []string
}
