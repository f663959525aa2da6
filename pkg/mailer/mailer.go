package mailer

import (
	"fmt"

	"github.com/volunteerhub/portal-backend/config"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

// Message is one outgoing HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages. SendAsync never reports failures to the caller;
// they are logged.
type Mailer interface {
	Send(msg Message) error
	SendAsync(msg Message)
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// New returns an SMTP mailer, or a log-only mailer when no host is configured.
func New(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		logger.Warn("EMAIL_SERVER_HOST not set, emails will only be logged")
		return &logMailer{}
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

func (m *smtpMailer) SendAsync(msg Message) {
	go func() {
		if err := m.Send(msg); err != nil {
			logger.Error("Email sending error", err, map[string]interface{}{
				"to":      msg.To,
				"subject": msg.Subject,
			})
		}
	}()
}

type logMailer struct{}

func (m *logMailer) Send(msg Message) error {
	logger.Info("Email delivery disabled, message logged", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.HTML,
	})
	return nil
}

func (m *logMailer) SendAsync(msg Message) {
	_ = m.Send(msg)
}
