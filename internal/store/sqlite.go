package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite
// database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordSend inserts one send attempt. A missing ID gets a fresh UUID
// and a zero SentAt becomes now.
func (s *SQLiteStore) RecordSend(ctx context.Context, record model.SendRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.SentAt.IsZero() {
		record.SentAt = time.Now()
	}

	recipients, err := json.Marshal(record.Recipients)
	if err != nil {
		return fmt.Errorf("marshaling recipients for record %s: %w", record.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO send_history (
			id, subject, recipients, delivered, failure, reason, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Subject, string(recipients),
		boolToInt(record.Delivered), string(record.Failure),
		record.Reason, record.SentAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting send record %s: %w", record.ID, err)
	}

	return nil
}

// RecentSends retrieves the most recent send attempts, newest first.
func (s *SQLiteStore) RecentSends(ctx context.Context, limit int) ([]model.SendRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, subject, recipients, delivered, failure, reason, sent_at
		FROM send_history
		ORDER BY sent_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying send history: %w", err)
	}
	defer rows.Close()

	var records []model.SendRecord
	for rows.Next() {
		var (
			record     model.SendRecord
			recipients string
			delivered  int
		)
		err := rows.Scan(
			&record.ID, &record.Subject, &recipients,
			&delivered, (*string)(&record.Failure),
			&record.Reason, &record.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning send record: %w", err)
		}

		record.Delivered = delivered != 0
		if err := json.Unmarshal([]byte(recipients), &record.Recipients); err != nil {
			return nil, fmt.Errorf("unmarshaling recipients for record %s: %w", record.ID, err)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
