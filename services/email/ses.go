package emailsvc

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
)

const charset = "UTF-8"

// sesAPI is the part of the SES client used to send emails.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesService struct {
	client     sesAPI
	from       string
	subjPrefix string
	baseURL    string
	logger     core.Logger
}

var _ core.EmailService = (*sesService)(nil)

// NewSESService sends emails through Amazon SES, with credentials from the environment.
func NewSESService(ctx context.Context, conf *core.Config, logger core.Logger) (core.EmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.Email.SESRegion))
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}
	return newSESService(ses.NewFromConfig(cfg), conf, logger), nil
}

func newSESService(client sesAPI, conf *core.Config, logger core.Logger) *sesService {
	parseTemplates(logger)
	from := conf.DefaultFromEmail()
	return &sesService{
		client:     client,
		from:       from.String(),
		subjPrefix: subjectPrefix(conf),
		baseURL:    conf.FrontendBaseURL,
		logger:     logger,
	}
}

func (svc sesService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := svc.sendMessage(context.Background(), msg); err != nil {
				svc.logger.Error("emailsvc.ses", err)
			}
		}()
	}
}

func (svc sesService) sendMessage(ctx context.Context, msg *core.EmailMessage) error {
	if err := msg.Render(svc.baseURL); err != nil {
		return errors.Wrap(err, "rendering email")
	}
	if !(msg.HasRecipients() && msg.HasContent()) {
		return nil
	}
	if msg.HasAttachments() {
		svc.logger.Warn("emailsvc.ses: attachments are not sent", msg.Subject)
	}
	if _, err := svc.client.SendEmail(ctx, svc.prepare(*msg)); err != nil {
		return errors.Wrap(err, "sending email")
	}
	return nil
}

func (svc sesService) prepare(msg core.EmailMessage) *ses.SendEmailInput {
	body := &types.Body{
		Text: &types.Content{Data: aws.String(msg.TextContent), Charset: aws.String(charset)},
	}
	if msg.HTMLContent != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLContent), Charset: aws.String(charset)}
	}
	return &ses.SendEmailInput{
		Source: aws.String(svc.from),
		Destination: &types.Destination{
			ToAddresses:  addressStrings(msg.To),
			CcAddresses:  addressStrings(msg.Cc),
			BccAddresses: addressStrings(msg.Bcc),
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(svc.subjPrefix + msg.Subject), Charset: aws.String(charset)},
			Body:    body,
		},
	}
}
