// Package mailbox stores copies of delivered mail in the account's
// Sent folder over IMAP.
package mailbox

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// SentCopier appends delivered messages to the Sent mailbox of an IMAP
// account. A failed copy never affects the send outcome; callers log
// and move on.
type SentCopier struct {
	host     string
	port     int
	username string
	password string
	mailbox  string
}

// NewSentCopier creates a copier for the configured IMAP account.
func NewSentCopier(cfg model.SentCopyConfig, password string) *SentCopier {
	return &SentCopier{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: password,
		mailbox:  cfg.Mailbox,
	}
}

// connect establishes a TLS connection to the IMAP server and
// authenticates. The caller is responsible for calling Logout on the
// returned client.
func (c *SentCopier) connect(_ context.Context) (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authentication failed for %s: %w", c.username, err)
	}

	return client, nil
}

// StoreSent appends the raw message to the Sent mailbox, trying common
// folder names when the configured one does not accept the append.
func (c *SentCopier) StoreSent(ctx context.Context, raw []byte) error {
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	folders := []string{c.mailbox, "Sent", "[Gmail]/Sent Mail", "Sent Items", "INBOX.Sent"}

	var lastErr error
	for _, folder := range folders {
		if folder == "" {
			continue
		}
		if err := appendTo(client, folder, raw); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("appending sent copy: %w", lastErr)
}

// appendTo performs a single APPEND of the message to the folder,
// flagged as seen.
func appendTo(client *imapclient.Client, folder string, raw []byte) error {
	appendCmd := client.Append(folder, int64(len(raw)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagSeen},
		Time:  time.Now(),
	})

	if _, err := appendCmd.Write(raw); err != nil {
		_ = appendCmd.Close()
		return err
	}
	if err := appendCmd.Close(); err != nil {
		return err
	}

	_, err := appendCmd.Wait()
	return err
}
