package notification

import (
	"context"
	"log/slog"
)

// Mail is a rendered notice.
type Mail struct {
	To         string
	Subject    string
	Greeting   string
	Lines      []string
	ActionText string
	ActionURL  string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// LogMailer writes mails to the log instead of an SMTP server.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.log.InfoContext(ctx, "mail sent",
		"to", mail.To,
		"subject", mail.Subject,
		"action_url", mail.ActionURL)
	return nil
}
