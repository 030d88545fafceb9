package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"setlist-api/core/config"
	"setlist-api/core/logger"
	"setlist-api/core/metrics"
)

// Sender delivers a rendered message to a single address.
type Sender interface {
	Send(ctx context.Context, to string, msg Message) error
}

// Gateway is what services depend on: render kind with data and deliver it.
type Gateway interface {
	SendKind(ctx context.Context, to string, kind Kind, data Data) error
}

type Mailer struct {
	renderer *Renderer
	sender   Sender
}

func NewMailer(renderer *Renderer, sender Sender) *Mailer {
	return &Mailer{renderer: renderer, sender: sender}
}

func (m *Mailer) SendKind(ctx context.Context, to string, kind Kind, data Data) error {
	msg, err := m.renderer.Render(kind, data)
	if err != nil {
		metrics.EmailDeliveries.WithLabelValues(string(kind), "render_error").Inc()
		return err
	}

	if err := m.sender.Send(ctx, to, msg); err != nil {
		metrics.EmailDeliveries.WithLabelValues(string(kind), "failed").Inc()
		logger.Error("Mailer:SendKind:Error", "kind", kind, "to", to, "error", err)
		return err
	}

	metrics.EmailDeliveries.WithLabelValues(string(kind), "sent").Inc()
	return nil
}

const sendTimeout = 30 * time.Second

type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers msg over one SMTP session. The connection deadline follows
// ctx, capped at sendTimeout, and the connection closes once ctx is done.
func (s *SMTPSender) Send(ctx context.Context, to string, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	body, err := buildMIME(s.cfg.FromAddress, msg.FromName, to, msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: sendTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(sendTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := s.deliver(conn, to, body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ctxErr, err)
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}
	return nil
}

func (s *SMTPSender) deliver(conn net.Conn, to string, body []byte) error {
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.FromAddress); err != nil {
		return fmt.Errorf("smtp sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	// the message is accepted once DATA closes
	_ = client.Quit()
	return nil
}

func buildMIME(fromAddress, fromName, to string, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := []string{
		fmt.Sprintf("From: %s <%s>", mime.QEncoding.Encode("utf-8", fromName), fromAddress),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", msg.Subject)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%s", mw.Boundary()),
	}
	head := strings.Join(headers, "\r\n") + "\r\n\r\n"

	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", msg.TextBody},
		{"text/html; charset=utf-8", msg.HTMLBody},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return append([]byte(head), buf.Bytes()...), nil
}
