// Package mailer delivers verification codes to users. The API only
// needs one-line transactional mails, so the interface is deliberately
// narrow; the SMTP implementation uses net/smtp and the log
// implementation backs development and tests.
package mailer

import (
	"fmt"
	"net/smtp"

	"expensedash/internal/config"
	"expensedash/internal/logger"
)

// Mailer sends a verification code to an email address.
type Mailer interface {
	SendCode(to, subject, code string) error
}

// SMTPMailer sends codes through a plain SMTP relay.
type SMTPMailer struct {
	host string
	port string
	from string
}

// NewSMTPMailer builds an SMTPMailer from the application config.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{host: cfg.SMTPHost, port: cfg.SMTPPort, from: cfg.SMTPFrom}
}

// SendCode implements Mailer.
func (m *SMTPMailer) SendCode(to, subject, code string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\nVerification code: %s\r\n",
		m.from, to, subject, code)
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, nil, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}
	return nil
}

// LogMailer writes codes to the application log instead of sending
// mail. Used when no SMTP host is configured.
type LogMailer struct{}

// SendCode implements Mailer.
func (m *LogMailer) SendCode(to, subject, code string) error {
	logger.Get().Infow("verification code issued",
		"to", to,
		"subject", subject,
		"code", code,
	)
	return nil
}

// FromConfig picks the SMTP mailer when a host is configured and the
// log mailer otherwise.
func FromConfig(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
