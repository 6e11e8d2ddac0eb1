// internal/workers/ai-conversation/parse-user-intent/models.go
package parseuserintent

import "smartdm-service/internal/models"

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Parsed     models.Intent     `json:"parsed"`
	IntentKind models.IntentKind `json:"intentKind"`
}
