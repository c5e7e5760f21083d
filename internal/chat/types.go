package chat

import "time"

// UserAuthor is the reserved author name for the human participant. A stored
// message with this author is the only event that triggers an orchestration
// run; every other author is a persona.
const UserAuthor = "Me"

// Message is a single chat message within a session. Messages are never
// mutated after creation; within a session they are ordered by timestamp,
// with insertion order breaking ties.
type Message struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}
