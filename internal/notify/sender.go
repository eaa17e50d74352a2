// Package notify delivers templated messages to holders and slot owners.
// Delivery is fire-and-forget: a failed send is logged and never surfaces to
// the flow that queued it.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends messages over plain SMTP with optional auth.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPSender(host, port, user, pass, from string) *SMTPSender {
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.HTML)

	var a smtp.Auth
	if s.user != "" {
		a = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, a, s.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
