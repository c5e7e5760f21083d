package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/chat"
)

// MockStore is a thread-safe in-memory implementation of store.ChatStore for
// testing. It records an ordered operation log ("typing_on:<author>",
// "typing_off:<author>", "commit:<author>") so tests can assert the delivery
// sequencer's strict ordering.
type MockStore struct {
	mu sync.Mutex

	Messages []chat.Message
	Typing   map[string]map[string]bool // sessionID -> author -> typing
	Ops      []string

	ListErr      error
	AppendErr    error
	BatchErr     error
	SetTypingErr error

	// FailAppendAt makes the Nth AppendMessage call fail (1-based, 0 = never).
	FailAppendAt int

	AppendCalls int
	TypingCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{
		Typing: make(map[string]map[string]bool),
	}
}

func (m *MockStore) ListMessages(_ context.Context, sessionID string) ([]chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []chat.Message
	for _, msg := range m.Messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *MockStore) AppendMessage(_ context.Context, author, body, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls++
	if m.AppendErr != nil {
		return m.AppendErr
	}
	if m.FailAppendAt > 0 && m.AppendCalls == m.FailAppendAt {
		return errStoreDown
	}
	m.Messages = append(m.Messages, chat.Message{
		Author:    author,
		Body:      body,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	})
	m.Ops = append(m.Ops, "commit:"+author)
	return nil
}

func (m *MockStore) AppendBatch(_ context.Context, msgs []chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BatchErr != nil {
		return m.BatchErr
	}
	now := time.Now().UTC()
	for _, msg := range msgs {
		if msg.Timestamp.IsZero() {
			msg.Timestamp = now
		}
		m.Messages = append(m.Messages, msg)
		m.Ops = append(m.Ops, "batch:"+msg.Author)
	}
	return nil
}

func (m *MockStore) SetTyping(_ context.Context, author, sessionID string, typing bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TypingCalls++
	if m.SetTypingErr != nil {
		return m.SetTypingErr
	}
	if m.Typing[sessionID] == nil {
		m.Typing[sessionID] = make(map[string]bool)
	}
	if typing {
		m.Typing[sessionID][author] = true
		m.Ops = append(m.Ops, "typing_on:"+author)
	} else {
		delete(m.Typing[sessionID], author)
		m.Ops = append(m.Ops, "typing_off:"+author)
	}
	return nil
}

func (m *MockStore) ListTyping(_ context.Context, sessionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var authors []string
	for a, on := range m.Typing[sessionID] {
		if on {
			authors = append(authors, a)
		}
	}
	return authors, nil
}

func (m *MockStore) ClearSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []chat.Message
	for _, msg := range m.Messages {
		if msg.SessionID != sessionID {
			kept = append(kept, msg)
		}
	}
	m.Messages = kept
	delete(m.Typing, sessionID)
	return nil
}

func (m *MockStore) Close() {}

// SeedMessage appends a message directly, bypassing call counting.
func (m *MockStore) SeedMessage(author, body, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, chat.Message{
		Author:    author,
		Body:      body,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	})
}

// MessageCount returns how many messages the session holds.
func (m *MockStore) MessageCount(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.Messages {
		if msg.SessionID == sessionID {
			n++
		}
	}
	return n
}

// TypingCount returns how many authors are currently typing in the session.
func (m *MockStore) TypingCount(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Typing[sessionID])
}

// OpLog returns a copy of the ordered operation log.
func (m *MockStore) OpLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Ops))
	copy(out, m.Ops)
	return out
}

type storeErr string

func (e storeErr) Error() string { return string(e) }

var errStoreDown = storeErr("store unavailable")
