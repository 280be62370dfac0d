// Package notify delivers order alerts to the shop owner and confirmation mail to customers.
package notify

import (
	"context"
)

// Alerter posts short plain-text alerts to the shop owner.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// Mail is one outgoing HTML message. The plain-text part is derived from HTML.
type Mail struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type nopAlerter struct{}

// NopAlerter is used when no alert channel is configured.
func NopAlerter() Alerter { return nopAlerter{} }

func (nopAlerter) Alert(context.Context, string) error { return nil }

type nopMailer struct{}

func NopMailer() Mailer { return nopMailer{} }

func (nopMailer) Send(context.Context, Mail) error { return nil }
