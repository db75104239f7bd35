// Package archive keeps a local sqlite history of finished interviews.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anshc022/vocahire/internal/fsm"
	"github.com/anshc022/vocahire/internal/session"
	"github.com/anshc022/vocahire/internal/summary"
	"github.com/anshc022/vocahire/internal/transcript"
)

// ErrNotFound reports an unknown session id.
var ErrNotFound = errors.New("session not found in history")

// Entry is one archived interview.
type Entry struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	EndReason    string    `json:"end_reason"`
	FinalState   fsm.State `json:"final_state"`
	OverallScore *float64  `json:"overall_score,omitempty"`
	Error        string    `json:"error,omitempty"`
	Messages     int       `json:"messages"`
}

// Store is a sqlite-backed session history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		resolved, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// DefaultPath is $XDG_STATE_HOME/vocahire/history.db.
func DefaultPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "vocahire", "history.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}
	return filepath.Join(home, ".local", "state", "vocahire", "history.db"), nil
}

func (s *Store) init() error {
	statements := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			end_reason TEXT NOT NULL DEFAULT '',
			final_state TEXT NOT NULL,
			overall_score REAL,
			error TEXT NOT NULL DEFAULT '',
			summary_json TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			message_id TEXT NOT NULL,
			speaker TEXT NOT NULL,
			text TEXT NOT NULL,
			ts TEXT NOT NULL,
			PRIMARY KEY(session_id, seq),
			FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,
		"CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)",
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init history schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Commit upserts one finished interview and replaces its messages.
func (s *Store) Commit(ctx context.Context, outcome session.Outcome) error {
	if strings.TrimSpace(outcome.SessionID) == "" {
		return errors.New("session id is required")
	}

	var (
		score       *float64
		summaryJSON string
		errText     string
	)
	if outcome.Summary != nil {
		overall := outcome.Summary.Overall()
		score = &overall
		raw, err := json.Marshal(outcome.Summary)
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		summaryJSON = string(raw)
	}
	if outcome.Err != nil {
		errText = outcome.Err.Error()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions(id, started_at, ended_at, end_reason, final_state, overall_score, error, summary_json)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ended_at = excluded.ended_at,
			end_reason = excluded.end_reason,
			final_state = excluded.final_state,
			overall_score = excluded.overall_score,
			error = excluded.error,
			summary_json = excluded.summary_json`,
		outcome.SessionID,
		formatTime(outcome.StartedAt),
		formatTime(outcome.EndedAt),
		string(outcome.EndReason),
		string(outcome.FinalState),
		score,
		errText,
		summaryJSON,
	); err != nil {
		return fmt.Errorf("upsert session %s: %w", outcome.SessionID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, outcome.SessionID); err != nil {
		return fmt.Errorf("clear messages for %s: %w", outcome.SessionID, err)
	}
	for i, msg := range outcome.Transcript {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages(session_id, seq, message_id, speaker, text, ts) VALUES(?, ?, ?, ?, ?, ?)`,
			outcome.SessionID, i, msg.ID, string(msg.Speaker), msg.Text, formatTime(msg.Timestamp),
		); err != nil {
			return fmt.Errorf("insert message %d for %s: %w", i, outcome.SessionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history for %s: %w", outcome.SessionID, err)
	}
	return nil
}

// List returns the most recent interviews first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.ended_at, s.end_reason, s.final_state, s.overall_score, s.error,
			(SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
		FROM sessions s
		ORDER BY s.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry          Entry
			started, ended string
			finalState     string
			score          sql.NullFloat64
		)
		if err := rows.Scan(&entry.ID, &started, &ended, &entry.EndReason, &finalState, &score, &entry.Error, &entry.Messages); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entry.StartedAt = parseTime(started)
		entry.EndedAt = parseTime(ended)
		entry.FinalState = fsm.State(finalState)
		if score.Valid {
			v := score.Float64
			entry.OverallScore = &v
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// Transcript returns the stored messages and summary for one interview.
func (s *Store) Transcript(ctx context.Context, id string) ([]transcript.Message, *summary.Summary, error) {
	var summaryJSON string
	err := s.db.QueryRowContext(ctx, `SELECT summary_json FROM sessions WHERE id = ?`, id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query session %s: %w", id, err)
	}

	var sum *summary.Summary
	if summaryJSON != "" {
		sum = &summary.Summary{}
		if err := json.Unmarshal([]byte(summaryJSON), sum); err != nil {
			return nil, nil, fmt.Errorf("decode stored summary for %s: %w", id, err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, speaker, text, ts FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query messages for %s: %w", id, err)
	}
	defer rows.Close()

	var messages []transcript.Message
	for rows.Next() {
		var (
			msg     transcript.Message
			speaker string
			ts      string
		)
		if err := rows.Scan(&msg.ID, &speaker, &msg.Text, &ts); err != nil {
			return nil, nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Speaker = transcript.Speaker(speaker)
		msg.Timestamp = parseTime(ts)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, sum, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
