package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/pierre-fitness/pierre-server/internal/errx"
)

var sesErrors = errx.NewRegistry("NOTIFY_SES")

var errSendFailed = sesErrors.Register("SEND_FAILED", errx.TypeExternal, 502, "ses send email failed")

// SESProvider is an EmailSender backed by AWS SES, following the teacher's
// pkg/notifx/notifxses.SESProvider shape.
type SESProvider struct {
	client *ses.Client
	from   string
}

// NewSESProvider loads AWS credentials the default way (env vars, shared
// config, or instance role) the same as the teacher's examples/ai/main.go
// does for its Bedrock client, and builds an SES provider sending From
// from.
func NewSESProvider(ctx context.Context, from string) (*SESProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &SESProvider{client: ses.NewFromConfig(cfg), from: from}, nil
}

func (p *SESProvider) SendEmail(ctx context.Context, msg EmailMessage) error {
	input := &ses.SendEmailInput{
		Source:      aws.String(p.from),
		Destination: &types.Destination{ToAddresses: msg.To},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")},
			},
		},
	}
	if _, err := p.client.SendEmail(ctx, input); err != nil {
		return sesErrors.NewWithCause(errSendFailed, err).WithDetail("to", msg.To)
	}
	return nil
}
