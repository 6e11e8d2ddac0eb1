// Package alert tells operators when the consultation manual cannot be read.
// Questions keep being answered with the fallback text while the alert is out.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"smartdm-service/internal/common/config"
	"smartdm-service/internal/common/metrics"
)

const manualMissingSubject = "[smartdm] 상담 매뉴얼 누락"

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

type Message struct {
	Subject string
	Body    string
}

type channel interface {
	name() string
	send(ctx context.Context, msg Message) error
}

// Notifier fans one alert out to every configured channel, at most once per
// throttle window.
type Notifier struct {
	channels []channel
	throttle time.Duration
	logger   Logger

	mu       sync.Mutex
	lastSent time.Time
	now      func() time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

func WithSNS(client SNSPublisher, topicARN string) Option {
	return func(n *Notifier) {
		n.channels = append(n.channels, &snsChannel{client: client, topicARN: topicARN})
	}
}

func WithSES(client SESSender, from string, to []string) Option {
	return func(n *Notifier) {
		n.channels = append(n.channels, &sesChannel{client: client, from: from, to: to})
	}
}

func NewNotifier(throttle time.Duration, log Logger, opts ...Option) *Notifier {
	n := &Notifier{
		throttle: throttle,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewFromConfig builds AWS clients for the enabled channels. It returns nil
// when no channel is enabled; a nil Notifier is a valid no-op.
func NewFromConfig(ctx context.Context, cfg config.AlertsConfig, log Logger) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var opts []Option
	if cfg.SNS.Enabled {
		opts = append(opts, WithSNS(sns.NewFromConfig(awsCfg), cfg.SNS.TopicARN))
	}
	if cfg.SES.Enabled {
		opts = append(opts, WithSES(ses.NewFromConfig(awsCfg), cfg.SES.FromEmail, cfg.SES.ToEmails))
	}
	return NewNotifier(time.Duration(cfg.Throttle)*time.Millisecond, log, opts...), nil
}

// ManualMissing reports that a question fell back because the manual was
// unavailable. It returns false when the alert was throttled.
func (n *Notifier) ManualMissing(ctx context.Context, requestID, question string) bool {
	if n == nil || len(n.channels) == 0 {
		return false
	}

	n.mu.Lock()
	now := n.now()
	if !n.lastSent.IsZero() && now.Sub(n.lastSent) < n.throttle {
		n.mu.Unlock()
		metrics.AlertsTotal.WithLabelValues("all", "throttled").Inc()
		return false
	}
	n.lastSent = now
	n.mu.Unlock()

	msg := Message{
		Subject: manualMissingSubject,
		Body: fmt.Sprintf("상담 매뉴얼을 읽을 수 없어 기본 안내로 응답했습니다.\n요청: %s\n시각: %s\n질문: %s",
			requestID, now.UTC().Format(time.RFC3339), question),
	}

	for _, ch := range n.channels {
		if err := ch.send(ctx, msg); err != nil {
			metrics.AlertsTotal.WithLabelValues(ch.name(), "failed").Inc()
			n.logger.Warn("alert delivery failed", map[string]interface{}{
				"channel":   ch.name(),
				"requestId": requestID,
				"error":     err.Error(),
			})
			continue
		}
		metrics.AlertsTotal.WithLabelValues(ch.name(), "sent").Inc()
		n.logger.Info("manual missing alert sent", map[string]interface{}{
			"channel":   ch.name(),
			"requestId": requestID,
		})
	}
	return true
}
