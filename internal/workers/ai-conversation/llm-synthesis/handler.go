// internal/workers/ai-conversation/llm-synthesis/handler.go
package llmsynthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"smartdm-service/internal/common/metrics"
)

const (
	TaskType = "llm-synthesis"
)

var (
	ErrInvalidInput = errors.New("INVALID_REQUEST")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config    *Config
	generator Generator
	logger    Logger
}

func NewHandler(config *Config, generator Generator, log Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: parse input: %v", ErrInvalidInput, err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrGenerationTimeout) || errors.Is(err, ErrGenerationFailed) {
			retries = 1
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	model := h.config.ModelFor(input.UseHighTier)
	prompt := Compose(input.Context, input.Question)

	start := time.Now()
	text, err := h.generator.Generate(ctx, model, prompt)
	metrics.GenerationDuration.WithLabelValues(h.config.Provider, model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationFailuresTotal.WithLabelValues(h.config.Provider, ErrorCode(err)).Inc()
		return nil, err
	}

	h.logger.Info("answer generated", map[string]interface{}{
		"model":        model,
		"answerLength": len([]rune(text)),
		"durationMs":   time.Since(start).Milliseconds(),
	})

	return &Output{
		Answer: strings.TrimSpace(text),
		Model:  model,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err = cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := ErrorCode(err)
	if errors.Is(err, ErrInvalidInput) {
		errorCode = "INVALID_REQUEST"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
		"retries":   retries,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
