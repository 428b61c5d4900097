package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const mailgunTimeout = 10 * time.Second

// Mailgun sends transactional email through the Mailgun HTTP API.
type Mailgun struct {
	Sender string
	Tags   []string
	client *mg.MailgunImpl
}

type MailgunOption func(*Mailgun)

// WithAPIBase points the client at a regional endpoint, e.g. mailgun.APIBaseEU. Empty keeps the default.
func WithAPIBase(base string) MailgunOption {
	return func(m *Mailgun) {
		if base != "" {
			m.client.SetAPIBase(base)
		}
	}
}

// WithTags labels every outgoing message for Mailgun analytics.
func WithTags(tags ...string) MailgunOption {
	return func(m *Mailgun) { m.Tags = append(m.Tags, tags...) }
}

func NewMailgun(domain, apiKey, sender string, opts ...MailgunOption) *Mailgun {
	m := &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send delivers one message. html is optional and sent alongside the text part.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if to == "" {
		return errors.New("mailgun: empty recipient")
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if len(m.Tags) > 0 {
		if err := msg.AddTag(m.Tags...); err != nil {
			return fmt.Errorf("mailgun: tags: %w", err)
		}
	}
	c, cancel := context.WithTimeout(ctx, mailgunTimeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun: send to %s: %w", to, err)
	}
	return nil
}

var _ Sender = (*Mailgun)(nil)
