package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/chat"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// InitSchema creates the chat tables if they do not exist. The serial id on
// chat_messages breaks ordering ties between equal timestamps.
func (s *Store) InitSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id bigserial PRIMARY KEY,
			author text NOT NULL,
			body text NOT NULL,
			session_id text NOT NULL,
			ts timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS chat_messages_session_idx
			ON chat_messages (session_id, ts, id)`,
		`CREATE TABLE IF NOT EXISTS typing_indicators (
			author text NOT NULL,
			session_id text NOT NULL,
			PRIMARY KEY (session_id, author)
		)`,
	}
	for _, q := range ddl {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// ListMessages returns every message in the session, chronological.
func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT author, body, session_id, ts FROM chat_messages WHERE session_id = $1 ORDER BY ts, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.Author, &m.Body, &m.SessionID, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AppendMessage inserts a single message stamped with the database clock.
func (s *Store) AppendMessage(ctx context.Context, author, body, sessionID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_messages (author, body, session_id) VALUES ($1, $2, $3)`,
		author, body, sessionID,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// AppendBatch bulk-inserts messages with no pacing. This is the non-paced
// delivery path; the sequencer's paced path goes through AppendMessage.
func (s *Store) AppendBatch(ctx context.Context, msgs []chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(msgs))
	for i, m := range msgs {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = now
		}
		rows[i] = []any{m.Author, m.Body, m.SessionID, ts}
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"chat_messages"},
		[]string{"author", "body", "session_id", "ts"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy messages: %w", err)
	}

	slog.Debug("inserted message batch", "count", len(msgs))
	return nil
}

// SetTyping upserts or deletes the typing record for (author, session).
// Both directions are idempotent: turning off a record that does not exist
// is a no-op.
func (s *Store) SetTyping(ctx context.Context, author, sessionID string, typing bool) error {
	var err error
	if typing {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO typing_indicators (author, session_id) VALUES ($1, $2)
			 ON CONFLICT (session_id, author) DO NOTHING`,
			author, sessionID,
		)
	} else {
		_, err = s.pool.Exec(ctx,
			`DELETE FROM typing_indicators WHERE session_id = $2 AND author = $1`,
			author, sessionID,
		)
	}
	if err != nil {
		return fmt.Errorf("set typing: %w", err)
	}
	return nil
}

// ListTyping returns the authors currently typing in the session.
func (s *Store) ListTyping(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT author FROM typing_indicators WHERE session_id = $1 ORDER BY author`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query typing: %w", err)
	}
	defer rows.Close()

	var authors []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan typing: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// ClearSession deletes all messages and typing records for the session.
func (s *Store) ClearSession(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM chat_messages WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM typing_indicators WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clear typing: %w", err)
	}
	return nil
}
