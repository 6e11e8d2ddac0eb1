// Package cache keeps short-lived snapshots of knowledge source text in Redis
// so that concurrent questions do not hammer the upstream sheet and document.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"smartdm-service/internal/common/metrics"
	"smartdm-service/internal/models"
)

type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// Source wraps a KnowledgeSource with a read-through Redis cache. Only
// successful results are stored; degraded results are always refetched.
type Source struct {
	inner  models.KnowledgeSource
	redis  redis.Cmdable
	ttl    time.Duration
	key    string
	logger Logger
}

// Wrap returns inner unchanged when ttl is not positive.
func Wrap(inner models.KnowledgeSource, client redis.Cmdable, ttl time.Duration, prefix string, log Logger) models.KnowledgeSource {
	if client == nil || ttl <= 0 {
		return inner
	}
	return &Source{
		inner:  inner,
		redis:  client,
		ttl:    ttl,
		key:    prefix + inner.Name(),
		logger: log,
	}
}

func (s *Source) Name() string {
	return s.inner.Name()
}

func (s *Source) Fetch(ctx context.Context) models.SourceResult {
	if val, err := s.redis.Get(ctx, s.key).Result(); err == nil {
		metrics.CacheLookupsTotal.WithLabelValues(s.Name(), "hit").Inc()
		return models.SourceResult{
			Source: s.Name(),
			Text:   val,
			Status: models.SourceOK,
		}
	} else if err != redis.Nil {
		metrics.CacheLookupsTotal.WithLabelValues(s.Name(), "error").Inc()
		s.logger.Warn("cache read failed", map[string]interface{}{
			"source": s.Name(),
			"error":  err.Error(),
		})
	} else {
		metrics.CacheLookupsTotal.WithLabelValues(s.Name(), "miss").Inc()
	}

	result := s.inner.Fetch(ctx)
	if !result.OK() {
		return result
	}

	if err := s.redis.Set(ctx, s.key, result.Text, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{
			"source": s.Name(),
			"error":  err.Error(),
		})
	}
	return result
}

// Invalidate drops the cached snapshot.
func (s *Source) Invalidate(ctx context.Context) error {
	return s.redis.Del(ctx, s.key).Err()
}
