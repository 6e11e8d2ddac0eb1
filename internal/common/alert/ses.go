// internal/common/alert/ses.go
package alert

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESSender is the subset of *ses.Client the notifier needs.
type SESSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesChannel struct {
	client SESSender
	from   string
	to     []string
}

func (c *sesChannel) name() string { return "ses" }

func (c *sesChannel) send(ctx context.Context, msg Message) error {
	_, err := c.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(c.from),
		Destination: &types.Destination{ToAddresses: c.to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
