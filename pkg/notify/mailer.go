package notify

import (
	"context"
	"fmt"

	"github.com/k3a/html2text"
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends multipart mail through one SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.build(mail)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", mail.To, err)
	}
	return nil
}

func (m *SMTPMailer) build(mail Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/plain", PlainText(mail.HTML))
	msg.AddAlternative("text/html", mail.HTML)
	return msg
}

// PlainText renders the text alternative of an HTML body.
func PlainText(html string) string {
	return html2text.HTML2Text(html)
}
