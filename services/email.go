package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender abstracts outbound email so tests can substitute a fake.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) (SendResult, error)
}

type SMTPConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	SenderName string
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, fmt.Errorf("SMTP host and port must be set")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("SMTP credentials must be set")
	}
	return &SMTPSender{cfg: cfg}, nil
}

// SendEmail dials the SMTP server under the caller's context; the context
// deadline, when present, also bounds the rest of the exchange via a
// connection deadline.
func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, htmlBody string) (SendResult, error) {
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	from := s.cfg.Username
	if s.cfg.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.SenderName, s.cfg.Username)
	}

	msg := []byte(
		"From: " + from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			htmlBody,
	)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return SendResult{}, fmt.Errorf("smtp dial failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return SendResult{}, fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return SendResult{}, fmt.Errorf("smtp starttls failed: %w", err)
		}
	}
	if ok, _ := client.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return SendResult{}, fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.Username); err != nil {
		return SendResult{}, fmt.Errorf("smtp mail failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return SendResult{}, fmt.Errorf("smtp rcpt failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return SendResult{}, fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return SendResult{}, fmt.Errorf("smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}
	if err := client.Quit(); err != nil {
		return SendResult{}, fmt.Errorf("smtp quit failed: %w", err)
	}

	return SendResult{
		MessageID: uuid.NewString(),
		SentAt:    time.Now(),
	}, nil
}

// BuildOTPEmail renders the verification-code email body.
func BuildOTPEmail(code string, expiry time.Duration) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background: #f4f4f4; margin: 0; }
  .container { max-width: 600px; margin: 40px auto; background: #fff; border-radius: 8px; overflow: hidden; }
  .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 24px; text-align: center; color: white; }
  .content { padding: 24px; color: #333; font-size: 15px; line-height: 1.6; }
  .code { font-size: 32px; font-weight: bold; letter-spacing: 4px; color: #667eea; text-align: center; padding: 16px; background: #f8f9fa; border-left: 4px solid #667eea; font-family: 'Courier New', monospace; }
  .footer { background: #f4f4f4; padding: 16px; text-align: center; font-size: 12px; color: #999; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h1>MobileMania</h1></div>
  <div class="content">
    <p>Hello,</p>
    <p>Use the code below to continue. It expires in <strong>%d minutes</strong>.</p>
    <div class="code">%s</div>
    <p>Never share this code with anyone. If you did not request it, you can safely ignore this email.</p>
  </div>
  <div class="footer">This is an automated message, please do not reply.</div>
</div>
</body>
</html>`, int(expiry.Minutes()), code)
}
