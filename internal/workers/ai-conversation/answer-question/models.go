// internal/workers/ai-conversation/answer-question/models.go
package answerquestion

import "smartdm-service/internal/models"

// ManualMissingAnswer is returned instead of generating when no manual is loaded.
const ManualMissingAnswer = "❗ 상담 매뉴얼이 존재하지 않아 정확한 답변을 제공할 수 없습니다."

const (
	deadlineTemplate    = "납기의 최대 기한은 %d일입니다."
	perItemTemplate     = "상품 코드 %s의 납기일은 %d일입니다."
	perItemUnknown      = "상품 코드 %s의 납기일 정보를 찾을 수 없습니다."
	noProductCodeAnswer = "질문에서 상품 코드를 찾을 수 없습니다."
	noDeliveryData      = "납기 정보를 찾을 수 없습니다."
)

type Input struct {
	Question    string `json:"question"`
	UseHighTier bool   `json:"useHighTier"`
}

type Output struct {
	Answer string            `json:"answer"`
	Model  string            `json:"model"`
	Parsed models.Intent     `json:"parsed"`
	Path   models.AnswerPath `json:"path"`
}
