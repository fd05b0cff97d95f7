package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendGridSender delivers mail through the SendGrid v3 API
type SendGridSender struct {
	APIKey   string
	FromName string
	From     string
}

var _ Sender = (*SendGridSender)(nil)

// Send delivers msg with its inline images as content-id attachments
func (s *SendGridSender) Send(ctx context.Context, msg *Message) error {
	if s.APIKey == "" {
		return configError("SendGrid API key is not configured")
	}
	if s.From == "" {
		return configError("Sender email is not configured")
	}

	client := sendgrid.NewSendClient(s.APIKey)
	resp, err := client.SendWithContext(ctx, s.build(msg))
	if err != nil {
		return &SendError{Kind: KindConnection, Err: fmt.Errorf("unable to reach SendGrid: %w", err)}
	}
	if resp.StatusCode >= 400 {
		return &SendError{Kind: KindProtocol, Err: fmt.Errorf("SendGrid returned %d: %s", resp.StatusCode, resp.Body)}
	}

	zap.S().Infow("email sent", "to", msg.To, "subject", msg.Subject, "provider", "sendgrid")
	return nil
}

func (s *SendGridSender) build(msg *Message) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(s.FromName, s.From))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	m.AddPersonalizations(p)

	if msg.Text != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))

	for _, img := range msg.Inline {
		a := sgmail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(img.Data))
		a.SetType(img.ContentType)
		a.SetFilename(img.Filename)
		a.SetDisposition("inline")
		a.SetContentID(img.CID)
		m.AddAttachment(a)
	}
	return m
}
