// internal/workers/ai-conversation/answer-question/resolver.go
package answerquestion

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	apperrors "smartdm-service/internal/common/errors"
	"smartdm-service/internal/common/logger"
	"smartdm-service/internal/common/metrics"
	"smartdm-service/internal/common/observability"
	"smartdm-service/internal/models"
	aggregatecontext "smartdm-service/internal/workers/ai-conversation/aggregate-context"
	llmsynthesis "smartdm-service/internal/workers/ai-conversation/llm-synthesis"
	parseuserintent "smartdm-service/internal/workers/ai-conversation/parse-user-intent"
)

// Synthesizer turns aggregated context into a generated answer.
type Synthesizer interface {
	Execute(ctx context.Context, input *llmsynthesis.Input) (*llmsynthesis.Output, error)
}

// Notifier is told when a question falls back because the manual is missing.
type Notifier interface {
	ManualMissing(ctx context.Context, requestID, question string) bool
}

// Sources groups the three knowledge sources consulted for every generated
// answer.
type Sources struct {
	Manual   models.KnowledgeSource
	Sheet    models.KnowledgeSource
	Document models.KnowledgeSource
}

// Resolver runs the full question pipeline: classify, answer from templates
// when possible, otherwise gather context and generate.
type Resolver struct {
	config      *Config
	sources     Sources
	templates   *DeliveryTemplates
	aggregator  *aggregatecontext.Aggregator
	synthesizer Synthesizer
	notifier    Notifier
	logger      Logger
}

func NewResolver(config *Config, sources Sources, aggregator *aggregatecontext.Aggregator, synthesizer Synthesizer, notifier Notifier, log Logger) *Resolver {
	return &Resolver{
		config:      config,
		sources:     sources,
		templates:   NewDeliveryTemplates(config.DeliveryTable),
		aggregator:  aggregator,
		synthesizer: synthesizer,
		notifier:    notifier,
		logger: log.With(map[string]interface{}{
			"component": "answer-resolver",
		}),
	}
}

// Resolve answers one question. Only generation failures and invalid input
// are returned as errors; source failures degrade the context instead.
func (r *Resolver) Resolve(ctx context.Context, question string, useHighTier bool) (*models.AnswerResult, error) {
	requestID := logger.RequestIDFromContext(ctx)
	log := r.logger.With(map[string]interface{}{"requestId": requestID})

	ctx, span := observability.StartSpan(ctx, "answer.resolve",
		attribute.String("request.id", requestID),
		attribute.Bool("answer.high_tier", useHighTier),
	)
	defer span.End()

	if strings.TrimSpace(question) == "" {
		return nil, apperrors.NewInvalidRequestError("question is required")
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	intent := parseuserintent.Classify(question)
	span.SetAttributes(attribute.String("answer.intent", string(intent.Kind())))
	if intent.Kind() == models.IntentUnknown {
		log.Debug("question matched no rule", map[string]interface{}{
			"errorCode": "CLASSIFICATION_AMBIGUOUS",
		})
	}

	if text, ok := r.templates.Answer(intent); ok {
		return r.finish(log, &models.AnswerResult{
			Answer: text,
			Model:  models.ModelTemplate,
			Parsed: intent,
		}), nil
	}

	manual, sheet, document := r.fetchSources(ctx, log)
	aggregated := r.aggregator.Aggregate(manual.Text, sheet.Text, document.Text, question)
	if len(aggregated.Truncated) > 0 {
		log.Debug("context truncated", map[string]interface{}{
			"sections": aggregated.Truncated,
		})
	}

	if aggregated.ManualMissing {
		log.Warn("manual missing, answering with fallback", map[string]interface{}{
			"manualStatus": string(manual.Status),
		})
		if r.notifier != nil {
			r.notifier.ManualMissing(ctx, requestID, question)
		}
		return r.finish(log, &models.AnswerResult{
			Answer: ManualMissingAnswer,
			Model:  models.ModelManualMissing,
			Parsed: intent,
		}), nil
	}

	output, err := r.synthesizer.Execute(ctx, &llmsynthesis.Input{
		Context:     aggregated.Context,
		Question:    aggregated.Question,
		UseHighTier: useHighTier,
	})
	if err != nil {
		stdErr := llmsynthesis.ToStandardError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		log.Error("generation failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return nil, stdErr
	}

	return r.finish(log, &models.AnswerResult{
		Answer: output.Answer,
		Model:  output.Model,
		Parsed: intent,
	}), nil
}

func (r *Resolver) finish(log Logger, result *models.AnswerResult) *models.AnswerResult {
	path := models.PathOf(result)
	metrics.AnswersTotal.WithLabelValues(string(path), result.Model).Inc()
	log.Info("question answered", map[string]interface{}{
		"path":   string(path),
		"model":  result.Model,
		"intent": string(result.Parsed.Kind()),
	})
	return result
}

// fetchSources reads all three sources concurrently. Sources never fail, so
// the group only bounds the fan-out.
func (r *Resolver) fetchSources(ctx context.Context, log Logger) (manual, sheet, document models.SourceResult) {
	var g errgroup.Group

	g.Go(func() error {
		manual = r.fetch(ctx, log, r.sources.Manual)
		return nil
	})
	g.Go(func() error {
		sheet = r.fetch(ctx, log, r.sources.Sheet)
		return nil
	})
	g.Go(func() error {
		document = r.fetch(ctx, log, r.sources.Document)
		return nil
	})

	_ = g.Wait()
	return manual, sheet, document
}

func (r *Resolver) fetch(ctx context.Context, log Logger, source models.KnowledgeSource) models.SourceResult {
	name := source.Name()
	ctx, span := observability.StartSpan(ctx, "source.fetch", attribute.String("source.name", name))
	defer span.End()

	if r.config.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.SourceTimeout)
		defer cancel()
	}

	start := time.Now()
	result := source.Fetch(ctx)
	metrics.SourceFetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.SourceFetchTotal.WithLabelValues(name, string(result.Status)).Inc()

	span.SetAttributes(attribute.String("source.status", string(result.Status)))
	if !result.OK() {
		log.Warn("source degraded", map[string]interface{}{
			"source":    name,
			"status":    string(result.Status),
			"errorCode": string(apperrors.ErrCodeSourceUnavailable),
		})
	}
	return result
}
