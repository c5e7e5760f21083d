// Package sequencer streams a parsed reply into the store over time,
// emulating one persona typing at a time. The sequence is strictly serial:
// element i+1 does not start until element i's commit completes.
package sequencer

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/reply"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/store"
)

// DeliveryError reports a store failure partway through a paced delivery.
// Messages committed before the failure are retained, not rolled back.
type DeliveryError struct {
	Index int
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed at element %d: %v", e.Index, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type Sequencer struct {
	store   store.ChatStore
	holdMin time.Duration
	holdMax time.Duration
	sleep   func(time.Duration)

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Sequencer. The rand source is injected so tests can pin delay
// draws; holdMin..holdMax is the typing-hold band per message.
func New(s store.ChatStore, rng *rand.Rand, holdMin, holdMax time.Duration) *Sequencer {
	if holdMax < holdMin {
		holdMax = holdMin
	}
	return &Sequencer{
		store:   s,
		holdMin: holdMin,
		holdMax: holdMax,
		sleep:   time.Sleep,
		rng:     rng,
	}
}

// SetSleep replaces the suspension function. Tests use this to run the
// sequence without real delays.
func (q *Sequencer) SetSleep(fn func(time.Duration)) {
	q.sleep = fn
}

// Deliver walks the reply in order. Per element: pre-delay (skipped for the
// first), typing-on, typing-hold, typing-off, commit. Any store failure
// aborts the remaining sequence.
func (q *Sequencer) Deliver(ctx context.Context, rpl reply.Reply, sessionID string) error {
	for i, m := range rpl {
		if i > 0 {
			// Staggered starts: the band widens with the element index.
			lo := time.Duration(i-1) * time.Second
			hi := time.Duration(i+3) * time.Second
			q.sleep(q.draw(lo, hi))
		}

		if err := q.store.SetTyping(ctx, m.Author, sessionID, true); err != nil {
			return &DeliveryError{Index: i, Err: err}
		}

		// Keystroke time, independent of message length.
		q.sleep(q.draw(q.holdMin, q.holdMax))

		if err := q.store.SetTyping(ctx, m.Author, sessionID, false); err != nil {
			return &DeliveryError{Index: i, Err: err}
		}

		if err := q.store.AppendMessage(ctx, m.Author, m.Body, sessionID); err != nil {
			return &DeliveryError{Index: i, Err: err}
		}
	}
	return nil
}

func (q *Sequencer) draw(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return lo + time.Duration(q.rng.Int63n(int64(hi-lo)))
}
