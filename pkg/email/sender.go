package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	// From is the SMTP envelope sender (MAIL FROM). This should be a raw mailbox address.
	From string
	// FromName is an optional display name used only for the message header.
	FromName string
}

type Sender struct {
	config Config
	auth   smtp.Auth
}

func NewSender(config Config) *Sender {
	var auth smtp.Auth
	if config.User != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.User, config.Password, config.Host)
	}

	return &Sender{
		config: config,
		auth:   auth,
	}
}

func (s *Sender) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	addr := net.JoinHostPort(s.config.Host, s.config.Port)

	fromHeader := s.config.From
	if strings.TrimSpace(s.config.FromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	fromHeader = sanitizeHeader(fromHeader)
	to = sanitizeHeader(to)
	subject = sanitizeHeader(subject)

	msg := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		htmlBody,
	}

	body := []byte(strings.Join(msg, "\r\n"))

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	// net/smtp has no context support, so the caller's deadline is enforced
	// on the connection itself. Every read and write below inherits it.
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return fmt.Errorf("set deadline: %w", err)
		}
	}

	c, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Close() }()

	if s.auth != nil {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if errTLS := c.StartTLS(&tls.Config{ServerName: s.config.Host}); errTLS != nil {
				return fmt.Errorf("starttls: %w", errTLS)
			}
		}
		if errAuth := c.Auth(s.auth); errAuth != nil {
			return fmt.Errorf("auth: %w", errAuth)
		}
	}

	if errMail := c.Mail(s.config.From); errMail != nil {
		return fmt.Errorf("mail from: %w", errMail)
	}

	if errRcpt := c.Rcpt(to); errRcpt != nil {
		return fmt.Errorf("rcpt to: %w", errRcpt)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}

	_, err = w.Write(body)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	return c.Quit()
}

func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}
