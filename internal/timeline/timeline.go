// Package timeline keeps a local audit trail of handled mentions so an
// operator can see what the bot did after the fact. Nothing in the reply
// path reads it back.
package timeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Mention handling statuses.
const (
	StatusReceived = "received"
	StatusReplied  = "replied"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// Event is one row of the audit trail.
type Event struct {
	TraceID   string
	NoteID    string
	Username  string
	Status    string
	ReplyID   string
	Detail    string
	CreatedAt time.Time
}

// Service stores mention events in a local sqlite database.
type Service struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS mention_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_id TEXT NOT NULL,
	note_id TEXT NOT NULL,
	username TEXT NOT NULL,
	status TEXT NOT NULL,
	reply_id TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mention_events_created ON mention_events(created_at);
`

// Open creates or opens the audit database at path. Use ":memory:" for an
// ephemeral database.
func Open(path string) (*Service, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open timeline db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init timeline schema: %w", err)
	}
	return &Service{db: db}, nil
}

// Record appends one event.
func (s *Service) Record(ctx context.Context, event Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mention_events (trace_id, note_id, username, status, reply_id, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.TraceID, event.NoteID, event.Username, event.Status, event.ReplyID, event.Detail, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("record mention event: %w", err)
	}
	return nil
}

// Recent returns the newest events, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT trace_id, note_id, username, status, reply_id, detail, created_at
		 FROM mention_events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query mention events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.TraceID, &e.NoteID, &e.Username, &e.Status, &e.ReplyID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mention event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Service) Close() error {
	return s.db.Close()
}
