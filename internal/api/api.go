// Package api serves the answer pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartdm-service/internal/common/observability"
	"smartdm-service/internal/models"
)

const serviceMessage = "Smart Parser API is running."

// Resolver answers a single question.
type Resolver interface {
	Resolve(ctx context.Context, question string, useHighTier bool) (*models.AnswerResult, error)
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// ReadinessCheck is one dependency probed by /ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Config struct {
	DebugManualLength int
	ReadinessTimeout  time.Duration
}

type Server struct {
	config   *Config
	resolver Resolver
	manual   models.KnowledgeSource
	checks   []ReadinessCheck
	obs      *observability.Observability
	logger   Logger
}

func NewServer(config *Config, resolver Resolver, manual models.KnowledgeSource, obs *observability.Observability, log Logger, checks ...ReadinessCheck) *Server {
	if config.ReadinessTimeout <= 0 {
		config.ReadinessTimeout = 2 * time.Second
	}
	return &Server{
		config:   config,
		resolver: resolver,
		manual:   manual,
		checks:   checks,
		obs:      obs,
		logger: log.With(map[string]interface{}{
			"component": "http-api",
		}),
	}
}

type route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{Method: "GET", Pattern: "/{$}", Handler: s.Root},
		{Method: "GET", Pattern: "/health", Handler: s.Health},
		{Method: "GET", Pattern: "/ready", Handler: s.Ready},
		{Method: "POST", Pattern: "/ask", Handler: s.Ask},
		{Method: "GET", Pattern: "/api/manual", Handler: s.Manual},
		{Method: "GET", Pattern: "/debug/manual", Handler: s.DebugManual},
	}
}

// Handler builds the router with request id middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, r := range s.routes() {
		mux.HandleFunc(r.Method+" "+r.Pattern, r.Handler)
	}
	mux.Handle("GET /metrics", promhttp.Handler())
	return withRequestID(mux)
}
