package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/pedro5g/forfly/configs"
	"github.com/pedro5g/forfly/internal/logging"
)

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg Email) error
}

// SESMailer delivers e-mail through Amazon SES.
type SESMailer struct {
	client *ses.Client
	from   string
	log    *slog.Logger
}

func NewSESMailer(ctx context.Context, cfg config.EmailConfig) (*SESMailer, error) {
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email address is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &SESMailer{client: client, from: cfg.SenderEmail, log: logging.New("notifier.ses")}, nil
}

func (m *SESMailer) SendEmail(ctx context.Context, msg Email) error {
	if msg.To == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.HTML)},
				Text: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.Text)},
			},
		},
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		m.log.Error("send email failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.log.Info("email sent", "to", msg.To, "message_id", aws.ToString(out.MessageId))
	return nil
}

// LogMailer only logs what would be sent. Used outside production.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer() *LogMailer {
	return &LogMailer{log: logging.New("notifier.mail")}
}

func (m *LogMailer) SendEmail(_ context.Context, msg Email) error {
	m.log.Info("email (not sent)", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
