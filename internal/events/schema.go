package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SubjectUserMessage is the NATS subject the API write path publishes to
// after a user message commits. The ingester consumes it and starts an
// orchestration run for the session.
const SubjectUserMessage = "chat.message.user"

// UserMessage is the payload carried on SubjectUserMessage.
type UserMessage struct {
	EventID   string    `json:"event_id"`
	SessionID string    `json:"session_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Normalize fills in missing fields with sensible defaults. A missing session
// ID is the one thing it cannot repair: without it there is no run to start.
func Normalize(raw []byte) (UserMessage, error) {
	var e UserMessage
	if err := json.Unmarshal(raw, &e); err != nil {
		return UserMessage{}, err
	}

	if e.SessionID == "" {
		return UserMessage{}, fmt.Errorf("event missing session_id")
	}

	if e.EventID == "" {
		e.EventID = uuid.New().String()
	}

	if e.Timestamp.IsZero() {
		slog.Warn("event missing timestamp, using ingestion time", "event_id", e.EventID)
		e.Timestamp = time.Now().UTC()
	}

	return e, nil
}
