// internal/workers/ai-conversation/llm-synthesis/prompt.go
package llmsynthesis

import "strings"

// Compose places the aggregated context and the question into the fixed
// consultation template. It is pure.
func Compose(context, question string) PromptEnvelope {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString(promptFooter)
	b.WriteString("\n질문: ")
	b.WriteString(question)

	return PromptEnvelope{
		System: SystemInstruction,
		User:   b.String(),
	}
}
