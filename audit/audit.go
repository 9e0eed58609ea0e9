// Package audit persists one row per executed tool call. It is optional
// observability: the dispatch core itself stays stateless across requests.
package audit

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/diepdo1810/toolbridge"
)

const schema = `
CREATE TABLE IF NOT EXISTS tool_calls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	call_id TEXT NOT NULL,
	function TEXT NOT NULL,
	method TEXT NOT NULL,
	url TEXT NOT NULL,
	status INTEGER NOT NULL,
	is_error INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tool_calls_request ON tool_calls(request_id);
`

// Store records executed tool calls in SQLite.
type Store struct {
	db *sql.DB
}

var _ toolbridge.Recorder = (*Store)(nil)

// Open opens the database at path, creating the file and schema if missing.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// RecordCall inserts one executed call.
func (s *Store) RecordCall(ctx context.Context, rec toolbridge.CallRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_calls
			(request_id, call_id, function, method, url, status, is_error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.CallID, rec.Function, rec.Method, rec.URL,
		rec.Status, rec.IsError, rec.Started.UTC().Format("2006-01-02T15:04:05.000Z"),
		rec.Duration.Milliseconds(),
	)
	return err
}

// CallsForRequest returns the calls recorded for one request, oldest first.
func (s *Store) CallsForRequest(ctx context.Context, requestID string) ([]toolbridge.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_id, function, method, url, status, is_error
		FROM tool_calls WHERE request_id = ? ORDER BY id`,
		requestID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []toolbridge.CallRecord
	for rows.Next() {
		rec := toolbridge.CallRecord{RequestID: requestID}
		if err := rows.Scan(&rec.CallID, &rec.Function, &rec.Method, &rec.URL, &rec.Status, &rec.IsError); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
