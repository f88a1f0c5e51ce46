package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
)

// EmailService sends mail over SMTP. It implements Notifier.
type EmailService struct {
	addr string
	from string
	auth smtp.Auth
}

// NewEmailService builds an SMTP notifier from environment variables.
func NewEmailService() (*EmailService, error) {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")

	if host == "" || port == "" || from == "" {
		return nil, fmt.Errorf("missing SMTP configuration in environment variables")
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &EmailService{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
		auth: auth,
	}, nil
}

// Notify sends a plain-text email to a single recipient.
func (e *EmailService) Notify(to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("From: " + e.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(e.addr, e.auth, e.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
