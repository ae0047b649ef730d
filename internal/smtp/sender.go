package smtp

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// SentCopier stores a copy of a delivered message, e.g. in the
// account's IMAP Sent mailbox.
type SentCopier interface {
	StoreSent(ctx context.Context, raw []byte) error
}

// Sender validates drafts and relays them through a Transport. It maps
// transport failures to typed outcomes and never lets an error
// propagate past its boundary.
type Sender struct {
	transport Transport
	from      string
	copier    SentCopier
	timeout   time.Duration
}

// NewSender creates a sender that submits mail as from through the
// given transport. copier may be nil.
func NewSender(transport Transport, from string, copier SentCopier) *Sender {
	return &Sender{
		transport: transport,
		from:      from,
		copier:    copier,
		timeout:   60 * time.Second,
	}
}

// Send validates the draft and attempts delivery exactly once.
// Precondition checks run in order (subject, body, recipients); the
// first failure short-circuits without touching the transport.
func (s *Sender) Send(ctx context.Context, draft *model.EmailDraft) model.SendOutcome {
	if draft.Subject == "" {
		return model.SendFailure(model.FailureMalformedDraft, "email subject is required")
	}
	if draft.Body == "" {
		return model.SendFailure(model.FailureMalformedDraft, "email body is required")
	}
	if len(draft.To) == 0 {
		return model.SendFailure(model.FailureMalformedDraft, "at least one recipient is required")
	}

	raw, err := BuildMIME(s.from, draft, time.Now())
	if err != nil {
		return model.SendFailure(model.FailureOther, err.Error())
	}

	msg := &Message{
		From:       s.from,
		Recipients: draft.AllRecipients(),
		Raw:        raw,
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.transport.Deliver(sendCtx, msg); err != nil {
		return mapDeliveryError(err)
	}

	if s.copier != nil {
		if err := s.copier.StoreSent(ctx, raw); err != nil {
			// The mail is already delivered; a failed Sent copy must
			// not turn the outcome into a failure.
			log.Printf("sent-copy failed: %v", err)
		}
	}

	return model.SendSuccess(msg.Recipients)
}

// mapDeliveryError converts a transport error into the failure
// taxonomy. Interrupted or timed-out sends have unknown results and
// are reported as such, never as success.
func mapDeliveryError(err error) model.SendOutcome {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return model.SendFailure(model.FailureAuthentication, err.Error())
	}

	var refusedErr *RecipientsRefusedError
	if errors.As(err, &refusedErr) {
		outcome := model.SendFailure(model.FailureRecipientsRefused, err.Error())
		outcome.Refused = refusedErr.Refused
		return outcome
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return model.SendFailure(model.FailureConnectionLost, err.Error())
	}

	if errors.Is(err, context.Canceled) {
		return model.SendFailure(model.FailureOther, "send interrupted; delivery state unknown")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.SendFailure(model.FailureOther, "send timed out; delivery state unknown")
	}

	return model.SendFailure(model.FailureOther, err.Error())
}
