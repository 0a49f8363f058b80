package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// SMTPSender delivers verification mail over authenticated SMTP
type SMTPSender struct {
	cfg     config.EmailConfig
	baseURL string
}

// NewSMTPSender creates a new SMTPSender
func NewSMTPSender(cfg config.EmailConfig, baseURL string) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("email: smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("email: from address is required")
	}
	return &SMTPSender{cfg: cfg, baseURL: baseURL}, nil
}

// SendVerificationEmail sends the OTP and verification link. The dial
// honors both the configured timeout and the caller's context.
func (s *SMTPSender) SendVerificationEmail(ctx context.Context, toAddress, displayName, otpCode, verificationToken string) error {
	body := s.buildMessage(toAddress, displayName, otpCode, verificationToken)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("email: dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("email: smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(nil); err != nil {
			return fmt.Errorf("email: starttls: %w", err)
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("email: smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.FromAddress); err != nil {
		return fmt.Errorf("email: mail from: %w", err)
	}
	if err := client.Rcpt(toAddress); err != nil {
		return fmt.Errorf("email: rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("email: data: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		w.Close()
		return fmt.Errorf("email: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("email: close body: %w", err)
	}

	return client.Quit()
}

func (s *SMTPSender) buildMessage(toAddress, displayName, otpCode, verificationToken string) string {
	from := s.cfg.FromAddress
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromAddress)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", toAddress)
	fmt.Fprintf(&b, "Subject: Verify your email address\r\n")
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n")
	fmt.Fprintf(&b, "\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", displayName)
	fmt.Fprintf(&b, "Your verification code is %s. It expires in 15 minutes.\r\n\r\n", otpCode)
	fmt.Fprintf(&b, "You can also verify with one click:\r\n%s\r\n", verificationLink(s.baseURL, verificationToken))
	return b.String()
}

var _ identity.EmailSender = (*SMTPSender)(nil)
