package mailer

import (
	"fmt"
	"time"

	mail "gopkg.in/mail.v2"
)

type SMTPMailer struct {
	dialer    *mail.Dialer
	fromEmail string
}

func NewSMTPMailer(host string, port int, username, password, fromEmail string) (*SMTPMailer, error) {
	if host == "" || fromEmail == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}

	d := mail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second

	return &SMTPMailer{dialer: d, fromEmail: fromEmail}, nil
}

func (m *SMTPMailer) Send(templateFile, email string, data any) error {
	msg, err := render(templateFile, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", templateFile, err)
	}

	mm := mail.NewMessage()
	mm.SetAddressHeader("From", m.fromEmail, FromName)
	mm.SetHeader("To", email)
	mm.SetHeader("Subject", msg.subject)
	mm.SetBody("text/plain", msg.plainBody)
	mm.AddAlternative("text/html", msg.htmlBody)

	for i := 0; i < maxRetries; i++ {
		err = m.dialer.DialAndSend(mm)
		if err == nil {
			return nil
		}
		// linear backoff between attempts
		time.Sleep(time.Second * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, err)
}
