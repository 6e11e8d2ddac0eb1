// internal/workers/ai-conversation/llm-synthesis/models.go
package llmsynthesis

// SystemInstruction is sent with every generation request.
const SystemInstruction = "너는 매뉴얼과 시트 데이터를 참고해 정확하게 응답하는 스마트 상담 도우미야."

const (
	promptHeader = "아래는 상담을 위한 매뉴얼과 참고용 시트 정보입니다."
	promptFooter = "이 자료를 바탕으로 다음 질문에 대해 정확하고 친절하게 답변해 주세요."
)

// PromptEnvelope is the system and user message pair handed to a Generator.
type PromptEnvelope struct {
	System string `json:"system"`
	User   string `json:"user"`
}

type Input struct {
	Context     string `json:"context"`
	Question    string `json:"question"`
	UseHighTier bool   `json:"useHighTier"`
}

type Output struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
