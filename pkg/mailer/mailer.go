// Package mailer sends certificate emails with PDF attachments via SendGrid.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Attachment is a file attached to an outbound message.
type Attachment struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Message is one outbound email.
type Message struct {
	ToName      string
	ToAddress   string
	Subject     string
	BodyText    string
	BodyHTML    string
	Attachments []Attachment
}

// Sender is any service that can send a single email message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendgridSender sends mail through the SendGrid v3 API.
type SendgridSender struct {
	key    string
	from   *sgmail.Email
	logger *zap.Logger
}

var _ Sender = (*SendgridSender)(nil)

// NewSendgridSender creates a SendGrid-backed sender.
func NewSendgridSender(apiKey, fromName, fromAddress string, logger *zap.Logger) *SendgridSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SendgridSender{
		key:    apiKey,
		from:   sgmail.NewEmail(fromName, fromAddress),
		logger: logger,
	}
}

// Send delivers one message; returns an error on API failure or 4xx/5xx status.
func (s *SendgridSender) Send(_ context.Context, msg Message) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))
	m.AddPersonalizations(p)

	if msg.BodyText != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.BodyText))
	}
	if msg.BodyHTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.BodyHTML))
	}
	for _, a := range msg.Attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        a.ContentType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}

	req := sendgrid.GetRequest(s.key, "/v3/mail/send", "https://api.sendgrid.com")
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// LogSender logs messages instead of sending them. Used when no API key is configured.
type LogSender struct {
	logger *zap.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a log-only sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message and reports success.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email (not sent, no API key)",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}
