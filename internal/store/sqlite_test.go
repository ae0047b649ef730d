package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestRecordSendRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := model.SendRecord{
		Subject:    "Weekly report",
		Recipients: []string{"pat@example.org", "lee@example.org"},
		Delivered:  true,
		SentAt:     time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.RecordSend(ctx, record))

	got, err := s.RecentSends(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.NotEmpty(t, got[0].ID, "missing ID gets generated")
	assert.Equal(t, "Weekly report", got[0].Subject)
	assert.Equal(t, []string{"pat@example.org", "lee@example.org"}, got[0].Recipients)
	assert.True(t, got[0].Delivered)
	assert.Equal(t, model.FailureNone, got[0].Failure)
	assert.True(t, got[0].SentAt.Equal(record.SentAt))
}

func TestRecordSendFillsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, s.RecordSend(ctx, model.SendRecord{
		Subject:    "No ID, no timestamp",
		Recipients: []string{"pat@example.org"},
	}))

	got, err := s.RecentSends(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.NotEmpty(t, got[0].ID)
	assert.True(t, got[0].SentAt.After(before))
}

func TestRecordSendFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordSend(ctx, model.SendRecord{
		Subject:    "Bounced",
		Recipients: []string{"bad@x.test"},
		Delivered:  false,
		Failure:    model.FailureRecipientsRefused,
		Reason:     "550 no such user",
	}))

	got, err := s.RecentSends(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.False(t, got[0].Delivered)
	assert.Equal(t, model.FailureRecipientsRefused, got[0].Failure)
	assert.Equal(t, "550 no such user", got[0].Reason)
}

func TestRecentSendsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordSend(ctx, model.SendRecord{
			Subject:    string(rune('a' + i)),
			Recipients: []string{"pat@example.org"},
			Delivered:  true,
			SentAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.RecentSends(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, "e", got[0].Subject)
	assert.Equal(t, "d", got[1].Subject)
	assert.Equal(t, "c", got[2].Subject)
}

func TestRecentSendsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.RecentSends(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s1, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.RecordSend(context.Background(), model.SendRecord{
		Subject:    "survives reopen",
		Recipients: []string{"pat@example.org"},
		Delivered:  true,
	}))
	require.NoError(t, s1.Close())

	// Reopening must not re-run the schema or lose data.
	s2, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.RecentSends(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
