package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartdm-service/internal/common/config"
)

// ==========================
// Test Fakes
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

type fakeSNS struct {
	mu     sync.Mutex
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSES struct {
	inputs []*ses.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &ses.SendEmailOutput{MessageId: aws.String("e-1")}, nil
}

// ==========================
// Notifier Tests
// ==========================

func TestNotifier_ManualMissing_SendsToAllChannels(t *testing.T) {
	snsClient := &fakeSNS{}
	sesClient := &fakeSES{}
	n := NewNotifier(time.Minute, &TestLogger{t: t},
		WithSNS(snsClient, "arn:aws:sns:ap-northeast-2:123:ops"),
		WithSES(sesClient, "bot@example.com", []string{"ops@example.com"}),
	)

	sent := n.ManualMissing(context.Background(), "req-1", "환불 되나요?")

	assert.True(t, sent)
	require.Len(t, snsClient.inputs, 1)
	assert.Equal(t, "arn:aws:sns:ap-northeast-2:123:ops", aws.ToString(snsClient.inputs[0].TopicArn))
	assert.Equal(t, manualMissingSubject, aws.ToString(snsClient.inputs[0].Subject))
	assert.Contains(t, aws.ToString(snsClient.inputs[0].Message), "req-1")
	assert.Contains(t, aws.ToString(snsClient.inputs[0].Message), "환불 되나요?")

	require.Len(t, sesClient.inputs, 1)
	assert.Equal(t, "bot@example.com", aws.ToString(sesClient.inputs[0].Source))
	assert.Equal(t, []string{"ops@example.com"}, sesClient.inputs[0].Destination.ToAddresses)
}

func TestNotifier_Throttle(t *testing.T) {
	snsClient := &fakeSNS{}
	n := NewNotifier(10*time.Minute, &TestLogger{t: t}, WithSNS(snsClient, "arn"))

	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return clock }

	assert.True(t, n.ManualMissing(context.Background(), "r1", "q"))

	clock = clock.Add(5 * time.Minute)
	assert.False(t, n.ManualMissing(context.Background(), "r2", "q"))

	clock = clock.Add(6 * time.Minute)
	assert.True(t, n.ManualMissing(context.Background(), "r3", "q"))

	assert.Len(t, snsClient.inputs, 2)
}

func TestNotifier_ChannelFailureDoesNotStopOthers(t *testing.T) {
	snsClient := &fakeSNS{err: errors.New("AccessDenied")}
	sesClient := &fakeSES{}
	n := NewNotifier(time.Minute, &TestLogger{t: t},
		WithSNS(snsClient, "arn"),
		WithSES(sesClient, "from@example.com", []string{"to@example.com"}),
	)

	assert.True(t, n.ManualMissing(context.Background(), "r1", "q"))
	assert.Len(t, sesClient.inputs, 1)
}

func TestNotifier_NilIsNoOp(t *testing.T) {
	var n *Notifier
	assert.False(t, n.ManualMissing(context.Background(), "r1", "q"))
}

func TestNewFromConfig_Disabled(t *testing.T) {
	n, err := NewFromConfig(context.Background(), config.AlertsConfig{Region: "ap-northeast-2"}, &TestLogger{t: t})

	require.NoError(t, err)
	assert.Nil(t, n)
}
