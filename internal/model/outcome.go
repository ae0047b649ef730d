package model

import (
	"fmt"
	"strings"
)

// FailureKind classifies why a send attempt did not deliver.
type FailureKind string

const (
	// FailureNone is the zero kind on successful outcomes.
	FailureNone FailureKind = ""

	// FailureMalformedDraft means validation rejected the draft before
	// any transport call was made.
	FailureMalformedDraft FailureKind = "malformed_draft"

	// FailureAuthentication means the transport refused our credentials.
	FailureAuthentication FailureKind = "authentication_failed"

	// FailureRecipientsRefused means the server rejected one or more
	// envelope recipients.
	FailureRecipientsRefused FailureKind = "recipients_refused"

	// FailureConnectionLost means the connection to the server failed
	// or dropped mid-session.
	FailureConnectionLost FailureKind = "connection_lost"

	// FailureOther covers everything else, including interrupts and
	// timeouts.
	FailureOther FailureKind = "other"
)

// SendOutcome is the result of exactly one send attempt. Either
// Delivered is true and Recipients holds the final envelope recipient
// list, or Delivered is false and Failure/Reason describe why.
type SendOutcome struct {
	Delivered  bool
	Recipients []string
	Failure    FailureKind
	// Refused holds the rejected subset on FailureRecipientsRefused,
	// when the server identified one.
	Refused []string
	Reason  string
}

// SendSuccess builds a delivered outcome for the given recipient list.
func SendSuccess(recipients []string) SendOutcome {
	return SendOutcome{Delivered: true, Recipients: recipients}
}

// SendFailure builds a failed outcome of the given kind.
func SendFailure(kind FailureKind, reason string) SendOutcome {
	return SendOutcome{Failure: kind, Reason: reason}
}

// String renders the outcome as a one-line user-facing report.
func (o SendOutcome) String() string {
	if o.Delivered {
		return fmt.Sprintf("Email sent successfully to: %s", strings.Join(o.Recipients, ", "))
	}

	switch o.Failure {
	case FailureMalformedDraft:
		return fmt.Sprintf("Cannot send: %s", o.Reason)
	case FailureAuthentication:
		return "Send failed: SMTP authentication failed. Please check your email credentials."
	case FailureRecipientsRefused:
		if len(o.Refused) > 0 {
			return fmt.Sprintf("Send failed: the server refused these recipients: %s", strings.Join(o.Refused, ", "))
		}
		return "Send failed: the server refused the recipient addresses."
	case FailureConnectionLost:
		return "Send failed: connection to the mail server was lost."
	default:
		return fmt.Sprintf("Send failed: %s", o.Reason)
	}
}
