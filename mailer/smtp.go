package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// SMTPSender delivers mail through an SMTP relay. Port 587 upgrades with
// STARTTLS, port 465 dials TLS directly, anything else stays plaintext.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	From     string
	Timeout  time.Duration
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s *SMTPSender) tlsConf() *tls.Config {
	return &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
}

// Send delivers msg to its single recipient
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if s.Host == "" {
		return configError("SMTP host is not configured")
	}
	if s.From == "" {
		return configError("Sender email is not configured")
	}

	raw, err := msg.Bytes(mail.Address{Name: s.FromName, Address: s.From}, time.Now())
	if err != nil {
		return &SendError{Kind: KindProtocol, Err: fmt.Errorf("failed to compose message: %w", err)}
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return &SendError{Kind: KindConnection, Err: fmt.Errorf("unable to connect to SMTP server at %s: %w", s.addr(), err)}
	}
	deadline := time.Now().Add(s.timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return &SendError{Kind: KindConnection, Err: fmt.Errorf("unable to connect to SMTP server at %s: %w", s.addr(), err)}
	}
	defer client.Close()

	if s.Port == 587 {
		if err = client.StartTLS(s.tlsConf()); err != nil {
			return &SendError{Kind: KindConnection, Err: fmt.Errorf("STARTTLS with %s failed: %w", s.addr(), err)}
		}
	}
	if s.Username != "" {
		if err = client.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return &SendError{Kind: KindProtocol, Err: fmt.Errorf("SMTP auth: %w", err)}
		}
	}
	if err = s.transmit(client, msg.To, raw); err != nil {
		return &SendError{Kind: KindProtocol, Err: err}
	}

	zap.S().Infow("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (s *SMTPSender) timeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return s.Timeout
}

func (s *SMTPSender) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: s.timeout()}
	if s.Port == 465 {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: s.tlsConf()}
		return tlsDialer.DialContext(ctx, "tcp", s.addr())
	}
	return dialer.DialContext(ctx, "tcp", s.addr())
}

func (s *SMTPSender) transmit(client *smtp.Client, to string, raw []byte) error {
	if err := client.Mail(s.From); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO %s: %w", to, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err = w.Write(raw); err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	return client.Quit()
}
