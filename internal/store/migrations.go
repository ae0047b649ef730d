package store

// migration is a single versioned schema change. Migrations run in
// order; each version applies at most once.
type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY
			);

			CREATE TABLE IF NOT EXISTS send_history (
				id         TEXT PRIMARY KEY,
				subject    TEXT NOT NULL,
				recipients TEXT NOT NULL,
				delivered  INTEGER NOT NULL,
				failure    TEXT NOT NULL DEFAULT '',
				reason     TEXT NOT NULL DEFAULT '',
				sent_at    TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_send_history_sent_at
				ON send_history(sent_at);

			INSERT INTO schema_version (version) VALUES (1);
		`,
	},
}
