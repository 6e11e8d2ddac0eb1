// internal/workers/knowledge/summarize-sheet/models.go
package summarizesheet

const (
	NoDataText        = "시트에 데이터가 없습니다."
	failureTextPrefix = "시트 파싱 실패: "
)
