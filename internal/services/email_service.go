package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	pkglogger "github.com/hormatech/blockplant/pkg/logger"
)

// Notifier sends account-related notifications. Failures are logged and never
// block the auth flow.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendLockoutNotice(ctx context.Context, email string, unlockIn int) error
}

// SESNotifier sends notifications through AWS SES.
type SESNotifier struct {
	client      *ses.Client
	fromAddress string
	logger      *slog.Logger
}

func NewSESNotifier(region, fromAddress string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotifier{
		client:      ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

func (n *SESNotifier) SendWelcome(ctx context.Context, email, name string) error {
	subject := "Welcome to the blockplant console"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour account is ready. You can now sign in and manage production orders, inventory and equipment.\n",
		name,
	)
	return n.send(ctx, email, subject, body)
}

func (n *SESNotifier) SendLockoutNotice(ctx context.Context, email string, unlockIn int) error {
	subject := "Your account has been temporarily locked"
	body := fmt.Sprintf(
		"Your account was locked after repeated failed sign-in attempts. It will unlock automatically in about %d minutes.\n\nIf this wasn't you, contact your plant supervisor.\n",
		unlockIn/60,
	)
	return n.send(ctx, email, subject, body)
}

func (n *SESNotifier) send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		n.logger.Error("failed to send email",
			slog.String("to", pkglogger.SanitizedEmail(to)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Info("email sent", slog.String("to", pkglogger.SanitizedEmail(to)))
	return nil
}

// NoopNotifier is used when email delivery is disabled (local development, CI).
type NoopNotifier struct{}

func (NoopNotifier) SendWelcome(context.Context, string, string) error    { return nil }
func (NoopNotifier) SendLockoutNotice(context.Context, string, int) error { return nil }
