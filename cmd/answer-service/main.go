// cmd/answer-service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"smartdm-service/internal/api"
	"smartdm-service/internal/common/alert"
	"smartdm-service/internal/common/cache"
	"smartdm-service/internal/common/camunda"
	"smartdm-service/internal/common/config"
	"smartdm-service/internal/common/database"
	httpclient "smartdm-service/internal/common/http"
	"smartdm-service/internal/common/logger"
	"smartdm-service/internal/common/observability"
	"smartdm-service/internal/models"

	actx "smartdm-service/internal/workers/ai-conversation/aggregate-context"
	aq "smartdm-service/internal/workers/ai-conversation/answer-question"
	llm "smartdm-service/internal/workers/ai-conversation/llm-synthesis"
	pui "smartdm-service/internal/workers/ai-conversation/parse-user-intent"
	lm "smartdm-service/internal/workers/knowledge/load-manual"
	nd "smartdm-service/internal/workers/knowledge/normalize-document"
	ss "smartdm-service/internal/workers/knowledge/summarize-sheet"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// infra holds the optional stores; each is nil unless a component needs it.
type infra struct {
	pg    *database.PostgresClient
	es    *database.ElasticsearchClient
	redis *database.RedisClient
}

func (i *infra) close(zapLog *zap.Logger) {
	if i.pg != nil {
		if err := i.pg.Close(); err != nil {
			zapLog.Error("Error closing PostgreSQL", zap.Error(err))
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			zapLog.Error("Error closing Redis", zap.Error(err))
		}
	}
}

func (i *infra) readinessChecks() []api.ReadinessCheck {
	var checks []api.ReadinessCheck
	if i.pg != nil {
		checks = append(checks, api.ReadinessCheck{Name: "postgres", Check: i.pg.Ping})
	}
	if i.es != nil {
		checks = append(checks, api.ReadinessCheck{Name: "elasticsearch", Check: i.es.Ping})
	}
	if i.redis != nil {
		checks = append(checks, api.ReadinessCheck{Name: "redis", Check: i.redis.Ping})
	}
	return checks
}

func main() {
	bootLog := logger.New("info", "console", "")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting answer service...", zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	// --- Observability ---
	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	if cfg.Tracing.Enabled {
		tracing, err := observability.NewTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			zapLog.Fatal("tracing init failed", zap.Error(err))
		}
		obs.WithTracing(tracing)
		zapLog.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.JaegerEndpoint))
	}

	outbound := httpclient.NewClient(0, cfg.App.Name+"/"+cfg.App.Version)

	stores := connectStores(ctx, cfg, zapLog)
	defer stores.close(zapLog)

	// --- Knowledge sources ---
	manual := lm.NewSource(lm.LoadConfig(cfg), &loadManualLoggerAdapter{log})

	sheet, err := buildSheetSource(ctx, cfg, outbound, stores, log)
	if err != nil {
		zapLog.Fatal("sheet source init failed", zap.Error(err))
	}
	document := buildDocumentSource(cfg, outbound, stores, log)

	if cfg.Cache.Enabled && stores.redis != nil {
		ttl := config.GetDuration(cfg.Cache.TTL)
		sheet = cache.Wrap(sheet, stores.redis.Client, ttl, cfg.Cache.KeyPrefix, log)
		document = cache.Wrap(document, stores.redis.Client, ttl, cfg.Cache.KeyPrefix, log)
		zapLog.Info("Source cache enabled", zap.Duration("ttl", ttl))
	}

	// --- Generation ---
	llmCfg := llm.LoadConfig(cfg)
	generator, err := llm.NewGenerator(ctx, llmCfg, outbound)
	if err != nil {
		zapLog.Fatal("generator init failed", zap.Error(err))
	}
	synthesis := llm.NewHandler(llmCfg, generator, &llmSynthesisLoggerAdapter{log})

	// --- Alerts ---
	var notifier aq.Notifier
	alerts, err := alert.NewFromConfig(ctx, cfg.Alerts, log)
	if err != nil {
		zapLog.Fatal("alert init failed", zap.Error(err))
	}
	if alerts != nil {
		notifier = alerts
	}

	// --- Resolver ---
	aqCfg := aq.LoadConfig(cfg)
	resolver := aq.NewResolver(
		aqCfg,
		aq.Sources{Manual: manual, Sheet: sheet, Document: document},
		actx.NewAggregator(actx.LoadConfig(cfg)),
		synthesis,
		notifier,
		&answerQuestionLoggerAdapter{log},
	)

	// --- Zeebe workers (optional) ---
	workers := camunda.NewWorkers(log)
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled() {
		zeebe, err = camunda.Connect(ctx, camunda.ClientConfigFrom(cfg.Camunda))
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

		if taskType := pui.TaskType; config.IsWorkerEnabled(cfg, taskType) {
			handler := pui.NewHandler(pui.LoadConfig(cfg), &parseUserIntentLoggerAdapter{log})
			workers.Start(zeebe.Raw(), taskType, config.GetWorkerConfig(cfg, taskType), handler.Handle)
		}
		if taskType := llm.TaskType; config.IsWorkerEnabled(cfg, taskType) {
			workers.Start(zeebe.Raw(), taskType, config.GetWorkerConfig(cfg, taskType), synthesis.Handle)
		}
		if taskType := aq.TaskType; config.IsWorkerEnabled(cfg, taskType) {
			handler := aq.NewHandler(aqCfg, resolver, &answerQuestionLoggerAdapter{log})
			workers.Start(zeebe.Raw(), taskType, config.GetWorkerConfig(cfg, taskType), handler.Handle)
		}
		zapLog.Info("Workers registered", zap.Int("count", workers.Count()))
	} else {
		zapLog.Info("No Zeebe broker configured, running HTTP only")
	}

	// --- HTTP server ---
	checks := stores.readinessChecks()
	if zeebe != nil {
		checks = append(checks, api.ReadinessCheck{Name: "zeebe", Check: zeebe.HealthCheck})
	}
	server := api.NewServer(
		&api.Config{DebugManualLength: cfg.Server.DebugManualLen, ReadinessTimeout: 3 * time.Second},
		resolver,
		manual,
		obs,
		&apiLoggerAdapter{log},
		checks...,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	workers.Close()
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	obs.Shutdown(shutdownCtx)

	zapLog.Info("Answer service stopped gracefully")
}

// connectStores opens only the stores the configured backends use.
func connectStores(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) *infra {
	stores := &infra{}

	if cfg.Sources.Sheet.Backend == config.SheetBackendPostgres {
		pg, err := connectPostgres(ctx, func() (*database.PostgresClient, error) {
			return database.NewPostgres(cfg.Database.Postgres)
		}, 15, 2*time.Second, zapLog)
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		stores.pg = pg
		zapLog.Info("PostgreSQL connected successfully")
	}

	if cfg.Sources.Document.Backend == config.DocumentBackendElasticsearch {
		err := retryWithBackoff(func() error {
			var err error
			stores.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return stores.es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	if cfg.Cache.Enabled {
		stores.redis = database.NewRedis(cfg.Database.Redis)
		err := retryWithBackoff(func() error {
			return stores.redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			// The cache is an optimisation; run uncached rather than exit.
			zapLog.Warn("redis unavailable, source cache disabled", zap.Error(err))
			_ = stores.redis.Close()
			stores.redis = nil
		} else {
			zapLog.Info("Redis connected successfully")
		}
	}

	return stores
}

// connectPostgres opens the pool once and retries only the ping. The pool is
// closed when every ping fails.
func connectPostgres(ctx context.Context, open func() (*database.PostgresClient, error), maxRetries int, delay time.Duration, zapLog *zap.Logger) (*database.PostgresClient, error) {
	pg, err := open()
	if err != nil {
		return nil, err
	}

	err = retryWithBackoff(func() error {
		return pg.Ping(ctx)
	}, maxRetries, delay, zapLog, "PostgreSQL connection")
	if err != nil {
		if closeErr := pg.Close(); closeErr != nil {
			zapLog.Warn("Error closing PostgreSQL after failed connect", zap.Error(closeErr))
		}
		return nil, err
	}
	return pg, nil
}

func buildSheetSource(ctx context.Context, cfg *config.Config, client *http.Client, stores *infra, log logger.Logger) (models.KnowledgeSource, error) {
	sheetCfg := ss.LoadConfig(cfg)

	var fetcher ss.RowFetcher
	switch cfg.Sources.Sheet.Backend {
	case config.SheetBackendPostgres:
		fetcher = ss.NewPostgresFetcher(stores.pg, sheetCfg.Table)
	case config.SheetBackendCSV:
		fetcher = ss.NewCSVFetcher(sheetCfg.CSVPath)
	default:
		var err error
		fetcher, err = ss.NewGoogleSheetsFetcher(ctx, sheetCfg, client)
		if err != nil {
			return nil, err
		}
	}

	return ss.NewSource(sheetCfg, fetcher, &summarizeSheetLoggerAdapter{log}), nil
}

func buildDocumentSource(cfg *config.Config, client *http.Client, stores *infra, log logger.Logger) models.KnowledgeSource {
	docCfg := nd.LoadConfig(cfg)

	var fetcher nd.BlockFetcher
	switch cfg.Sources.Document.Backend {
	case config.DocumentBackendElasticsearch:
		fetcher = nd.NewElasticsearchFetcher(stores.es.Client, docCfg)
	default:
		fetcher = nd.NewHTTPFetcher(docCfg.URL, client)
	}

	return nd.NewSource(docCfg, fetcher, &normalizeDocumentLoggerAdapter{log})
}
