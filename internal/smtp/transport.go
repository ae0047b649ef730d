// Package smtp validates drafts and relays them through an SMTP
// transport. The transport is deliberately dumb: one connection, one
// attempt, no retry or backoff.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// Message is a fully built outbound message: envelope plus raw RFC
// 5322 bytes.
type Message struct {
	From       string
	Recipients []string
	Raw        []byte
}

// Transport is the delivery backend interface. Implementations own the
// actual protocol handling; callers treat delivery as opaque.
type Transport interface {
	// Deliver attempts delivery of the message exactly once.
	Deliver(ctx context.Context, msg *Message) error

	// Name returns the human-readable name of this transport.
	Name() string
}

// AuthError indicates the server rejected our credentials.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("smtp authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ConnectionError indicates the connection could not be established or
// was lost mid-session.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("smtp connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RecipientsRefusedError indicates the server rejected every envelope
// recipient. Refused holds the rejected addresses.
type RecipientsRefusedError struct {
	Refused []string
	Err     error
}

func (e *RecipientsRefusedError) Error() string {
	return fmt.Sprintf("recipients refused (%s): %v", strings.Join(e.Refused, ", "), e.Err)
}

func (e *RecipientsRefusedError) Unwrap() error { return e.Err }

// SMTPTransport delivers mail over SMTP with STARTTLS and PLAIN auth.
type SMTPTransport struct {
	host     string
	addr     string
	username string
	password string
}

// NewSMTPTransport creates a transport for the given server. Auth is
// skipped when username is empty.
func NewSMTPTransport(cfg model.SMTPConfig, password string) *SMTPTransport {
	return &SMTPTransport{
		host:     cfg.Host,
		addr:     cfg.Address(),
		username: cfg.Username,
		password: password,
	}
}

// Name returns the transport name.
func (t *SMTPTransport) Name() string {
	return "smtp"
}

// Deliver connects, upgrades to TLS, authenticates, and submits the
// message in a single attempt. Recipients are submitted individually;
// following smtplib semantics, delivery proceeds as long as at least
// one recipient is accepted and fails with RecipientsRefusedError only
// when all are rejected.
func (t *SMTPTransport) Deliver(ctx context.Context, msg *Message) error {
	client, err := gosmtp.DialStartTLS(t.addr, &tls.Config{ServerName: t.host})
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer client.Close()

	// Closing the connection is the only way to unblock the client on
	// cancellation; the caller maps the resulting error via ctx.Err().
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-done:
		}
	}()

	if t.username != "" {
		auth := sasl.NewPlainClient("", t.username, t.password)
		if err := client.Auth(auth); err != nil {
			return &AuthError{Err: err}
		}
	}

	if err := client.Mail(msg.From, nil); err != nil {
		return t.classify(ctx, err)
	}

	var refused []string
	var lastRefusal error
	accepted := 0
	for _, rcpt := range msg.Recipients {
		if err := client.Rcpt(rcpt, nil); err != nil {
			var smtpErr *gosmtp.SMTPError
			if errors.As(err, &smtpErr) {
				refused = append(refused, rcpt)
				lastRefusal = err
				continue
			}
			return t.classify(ctx, err)
		}
		accepted++
	}
	if accepted == 0 {
		return &RecipientsRefusedError{Refused: refused, Err: lastRefusal}
	}

	wc, err := client.Data()
	if err != nil {
		return t.classify(ctx, err)
	}
	if _, err := wc.Write(msg.Raw); err != nil {
		wc.Close()
		return t.classify(ctx, err)
	}
	if err := wc.Close(); err != nil {
		return t.classify(ctx, err)
	}

	// The server accepted the message; a failed QUIT does not undo that.
	_ = client.Quit()

	return nil
}

// classify wraps a mid-session error with its cause category. SMTP
// status replies pass through; anything else on an open connection is
// treated as the connection going away.
func (t *SMTPTransport) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var smtpErr *gosmtp.SMTPError
	if errors.As(err, &smtpErr) {
		if smtpErr.Code == 530 || smtpErr.Code == 535 {
			return &AuthError{Err: err}
		}
		return err
	}

	return &ConnectionError{Err: err}
}

// BuildMIME renders a draft as a single-part text/plain RFC 5322
// message. Bcc recipients stay off the headers; they appear only on
// the envelope.
func BuildMIME(from string, draft *model.EmailDraft, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", toAddressList(draft.To))
	if len(draft.Cc) > 0 {
		h.SetAddressList("Cc", toAddressList(draft.Cc))
	}
	h.SetSubject(draft.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	switch draft.Priority {
	case model.PriorityHigh:
		h.Set("X-Priority", "1")
		h.Set("X-MSMail-Priority", "High")
	case model.PriorityLow:
		h.Set("X-Priority", "5")
		h.Set("X-MSMail-Priority", "Low")
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := w.Write([]byte(draft.Body)); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing message: %w", err)
	}

	return buf.Bytes(), nil
}

func toAddressList(addrs []string) []*mail.Address {
	list := make([]*mail.Address, 0, len(addrs))
	for _, a := range addrs {
		list = append(list, &mail.Address{Address: a})
	}
	return list
}
