// Package selector picks which personas are expected to respond to a turn.
// The pick is advisory: the prompt builder's addressing-override rule lets
// the model answer as any persona the user named directly, so the focus list
// biases the reply rather than filtering it.
package selector

import (
	"math/rand"
	"sync"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/chat"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/persona"
)

type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
	min int
	max int
}

// New creates a Selector drawing between min and max responders per turn.
// The rand source is injected so tests can force deterministic picks.
func New(rng *rand.Rand, min, max int) *Selector {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return &Selector{rng: rng, min: min, max: max}
}

// Pick draws an advisory focus list from the roster and a target reply count
// for the generation request. Roster entries may repeat; a duplicated persona
// simply gets more chances in the shuffle. History is part of the contract so
// future policies can bias toward recent speakers; the current policy draws
// uniformly and ignores it.
func (s *Selector) Pick(roster []persona.Persona, history []chat.Message) ([]string, int) {
	if len(roster) == 0 {
		return nil, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.min + s.rng.Intn(s.max-s.min+1)
	if count > len(roster) {
		count = len(roster)
	}

	names := make([]string, len(roster))
	for i, p := range roster {
		names[i] = p.Name
	}
	s.rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})

	focus := names[:count]

	// A duplicated roster entry can be drawn twice; collapse the focus list
	// but keep the full draw size as the reply target.
	seen := make(map[string]bool, count)
	distinct := focus[:0]
	for _, n := range focus {
		if seen[n] {
			continue
		}
		seen[n] = true
		distinct = append(distinct, n)
	}

	return distinct, count
}
