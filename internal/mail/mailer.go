// Package mail delivers outbound messages over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"io"

	gomail "gopkg.in/gomail.v2"
)

// Attachment is a file carried alongside a message body.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message describes a single outbound email.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers messages through a configured SMTP relay.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSender constructs a sender for the given SMTP endpoint.
func NewSender(host string, port int, username, password, from string) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers a single message. Delivery failures are returned to the
// caller so it can decide whether they are fatal.
func (s *Sender) Send(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: message has no recipients")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)
	for _, att := range msg.Attachments {
		att := att
		m.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(att.Data))
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}),
		)
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
