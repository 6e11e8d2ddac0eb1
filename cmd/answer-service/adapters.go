package main

import (
	"smartdm-service/internal/api"
	"smartdm-service/internal/common/logger"

	aq "smartdm-service/internal/workers/ai-conversation/answer-question"
	llm "smartdm-service/internal/workers/ai-conversation/llm-synthesis"
	pui "smartdm-service/internal/workers/ai-conversation/parse-user-intent"
	lm "smartdm-service/internal/workers/knowledge/load-manual"
	nd "smartdm-service/internal/workers/knowledge/normalize-document"
	ss "smartdm-service/internal/workers/knowledge/summarize-sheet"
)

// Logger adapters for packages that declare their own Logger interface
type parseUserIntentLoggerAdapter struct {
	logger.Logger
}

func (a *parseUserIntentLoggerAdapter) With(fields map[string]interface{}) pui.Logger {
	return &parseUserIntentLoggerAdapter{a.Logger.With(fields)}
}

type llmSynthesisLoggerAdapter struct {
	logger.Logger
}

func (a *llmSynthesisLoggerAdapter) With(fields map[string]interface{}) llm.Logger {
	return &llmSynthesisLoggerAdapter{a.Logger.With(fields)}
}

type answerQuestionLoggerAdapter struct {
	logger.Logger
}

func (a *answerQuestionLoggerAdapter) With(fields map[string]interface{}) aq.Logger {
	return &answerQuestionLoggerAdapter{a.Logger.With(fields)}
}

type loadManualLoggerAdapter struct {
	logger.Logger
}

func (a *loadManualLoggerAdapter) With(fields map[string]interface{}) lm.Logger {
	return &loadManualLoggerAdapter{a.Logger.With(fields)}
}

type summarizeSheetLoggerAdapter struct {
	logger.Logger
}

func (a *summarizeSheetLoggerAdapter) With(fields map[string]interface{}) ss.Logger {
	return &summarizeSheetLoggerAdapter{a.Logger.With(fields)}
}

type normalizeDocumentLoggerAdapter struct {
	logger.Logger
}

func (a *normalizeDocumentLoggerAdapter) With(fields map[string]interface{}) nd.Logger {
	return &normalizeDocumentLoggerAdapter{a.Logger.With(fields)}
}

type apiLoggerAdapter struct {
	logger.Logger
}

func (a *apiLoggerAdapter) With(fields map[string]interface{}) api.Logger {
	return &apiLoggerAdapter{a.Logger.With(fields)}
}
