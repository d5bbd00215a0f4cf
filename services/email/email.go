// Package emailsvc holds the email backends: console (debug), SendGrid and Amazon SES.
package emailsvc

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
)

var templatesOnce sync.Once

// parseTemplates parses the email templates once per process.
func parseTemplates(logger core.Logger) {
	templatesOnce.Do(func() {
		if err := core.ParseEmailTemplates(); err != nil && logger != nil {
			logger.Error("emailsvc.parseTemplates", err)
		}
	})
}

func subjectPrefix(conf *core.Config) string {
	return "[" + conf.AppName + "] "
}

// NewService returns the email backend set in the config.
func NewService(ctx context.Context, conf *core.Config, logger core.Logger) (core.EmailService, error) {
	switch strings.ToLower(conf.Email.Backend) {
	case "", "console":
		return NewConsoleService(conf, logger), nil
	case "sendgrid":
		return NewSendgridService(conf, logger), nil
	case "ses":
		return NewSESService(ctx, conf, logger)
	default:
		return nil, errors.Errorf("unknown email backend %q", conf.Email.Backend)
	}
}

func addressStrings(addrs []mail.Address) []string {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return out
}
