package store

import (
	"context"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// Store defines the persistence interface for the local send history.
// Conversation transcripts are deliberately not part of it; only send
// attempts are recorded.
type Store interface {
	// RecordSend persists one send attempt. An empty ID or zero SentAt
	// is filled in by the implementation.
	RecordSend(ctx context.Context, record model.SendRecord) error

	// RecentSends returns the most recent send attempts, newest first.
	RecentSends(ctx context.Context, limit int) ([]model.SendRecord, error)
}
