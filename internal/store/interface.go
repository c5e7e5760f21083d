package store

import (
	"context"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/chat"
)

// ChatStore is the interface consumed by the API, orchestrator, and delivery
// sequencer. The concrete implementation is *Store (pgx-backed).
type ChatStore interface {
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
	AppendMessage(ctx context.Context, author, body, sessionID string) error
	AppendBatch(ctx context.Context, msgs []chat.Message) error
	SetTyping(ctx context.Context, author, sessionID string, typing bool) error
	ListTyping(ctx context.Context, sessionID string) ([]string, error)
	ClearSession(ctx context.Context, sessionID string) error
	Close()
}
