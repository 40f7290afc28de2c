package mailer

import "github.com/rsommers/lakehouse/pkg/config"

// Mailer is the single outbound-email capability the rest of the system
// depends on. Delivery details stay behind this interface.
type Mailer interface {
	Send(toEmail, toName, subject, text, html string) error
}

// FromConfig picks an implementation: MailerSend when an API key is set,
// SMTP when a host is set, otherwise the dev mailer that logs the message.
func FromConfig(cfg config.EmailConfig) Mailer {
	if cfg.DevMode {
		return NewDevMailer()
	}
	if cfg.MailerSendKey != "" {
		return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	}
	if cfg.SMTPHost != "" {
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
	return NewDevMailer()
}
