package model

import "time"

// SendRecord is one persisted send attempt, successful or not.
// Only send attempts are recorded; conversation transcripts are never
// written to disk.
type SendRecord struct {
	ID         string      `db:"id"`
	Subject    string      `db:"subject"`
	Recipients []string    `db:"-"`
	Delivered  bool        `db:"delivered"`
	Failure    FailureKind `db:"failure"`
	Reason     string      `db:"reason"`
	SentAt     time.Time   `db:"sent_at"`
}

// RecordFromOutcome builds a SendRecord from a draft and the outcome of
// its send attempt. The caller assigns ID and SentAt.
func RecordFromOutcome(draft *EmailDraft, outcome SendOutcome) SendRecord {
	return SendRecord{
		Subject:    draft.Subject,
		Recipients: draft.AllRecipients(),
		Delivered:  outcome.Delivered,
		Failure:    outcome.Failure,
		Reason:     outcome.Reason,
	}
}
