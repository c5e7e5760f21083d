package sequencer

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/reply"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/testutil"
)

func instant(t *testing.T, ms *testutil.MockStore) (*Sequencer, *[]time.Duration) {
	t.Helper()
	q := New(ms, rand.New(rand.NewSource(1)), 1500*time.Millisecond, 4500*time.Millisecond)
	var slept []time.Duration
	q.SetSleep(func(d time.Duration) { slept = append(slept, d) })
	return q, &slept
}

func TestDeliver_StrictOrdering(t *testing.T) {
	ms := testutil.NewMockStore()
	q, _ := instant(t, ms)

	rpl := reply.Reply{
		{Author: "El Chapo", Body: "uno"},
		{Author: "Joseph Stalin", Body: "dva"},
		{Author: "OJ Simpson", Body: "three"},
	}

	if err := q.Deliver(context.Background(), rpl, "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"typing_on:El Chapo", "typing_off:El Chapo", "commit:El Chapo",
		"typing_on:Joseph Stalin", "typing_off:Joseph Stalin", "commit:Joseph Stalin",
		"typing_on:OJ Simpson", "typing_off:OJ Simpson", "commit:OJ Simpson",
	}
	got := ms.OpLog()
	if len(got) != len(want) {
		t.Fatalf("expected %d ops, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if n := ms.MessageCount("sess-1"); n != 3 {
		t.Errorf("expected 3 commits, got %d", n)
	}
	if n := ms.TypingCount("sess-1"); n != 0 {
		t.Errorf("expected no residual typing records, got %d", n)
	}
}

func TestDeliver_SuspensionPattern(t *testing.T) {
	ms := testutil.NewMockStore()
	q, slept := instant(t, ms)

	rpl := reply.Reply{
		{Author: "A", Body: "1"},
		{Author: "B", Body: "2"},
		{Author: "C", Body: "3"},
	}
	if err := q.Deliver(context.Background(), rpl, "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Element 0 has no pre-delay, so: hold, pre, hold, pre, hold.
	if len(*slept) != 5 {
		t.Fatalf("expected 5 suspensions, got %d: %v", len(*slept), *slept)
	}

	holds := []time.Duration{(*slept)[0], (*slept)[2], (*slept)[4]}
	for i, h := range holds {
		if h < 1500*time.Millisecond || h >= 4500*time.Millisecond {
			t.Errorf("hold %d outside band: %v", i, h)
		}
	}

	// Pre-delay for element i draws from [i-1, i+3) seconds.
	pres := []struct {
		d      time.Duration
		lo, hi time.Duration
	}{
		{(*slept)[1], 0, 4 * time.Second},
		{(*slept)[3], 1 * time.Second, 5 * time.Second},
	}
	for i, p := range pres {
		if p.d < p.lo || p.d >= p.hi {
			t.Errorf("pre-delay %d outside [%v,%v): %v", i+1, p.lo, p.hi, p.d)
		}
	}
}

func TestDeliver_SingleMessageNoPreDelay(t *testing.T) {
	ms := testutil.NewMockStore()
	q, slept := instant(t, ms)

	rpl := reply.Reply{{Author: "El Chapo", Body: "Órale"}}
	if err := q.Deliver(context.Background(), rpl, "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the typing hold.
	if len(*slept) != 1 {
		t.Errorf("expected 1 suspension, got %d", len(*slept))
	}
}

func TestDeliver_AbortsOnStoreFailure(t *testing.T) {
	ms := testutil.NewMockStore()
	ms.FailAppendAt = 2 // second commit fails
	q, _ := instant(t, ms)

	rpl := reply.Reply{
		{Author: "A", Body: "1"},
		{Author: "B", Body: "2"},
		{Author: "C", Body: "3"},
	}
	err := q.Deliver(context.Background(), rpl, "sess-1")

	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if de.Index != 1 {
		t.Errorf("expected failure at element 1, got %d", de.Index)
	}

	// First commit is retained, third never attempted.
	if n := ms.MessageCount("sess-1"); n != 1 {
		t.Errorf("expected 1 retained message, got %d", n)
	}
	// B's typing record was already cleared before its commit failed.
	if n := ms.TypingCount("sess-1"); n != 0 {
		t.Errorf("expected no typing records, got %d", n)
	}
}

func TestDeliver_TypingOnFailureAborts(t *testing.T) {
	ms := testutil.NewMockStore()
	ms.SetTypingErr = errors.New("store unavailable")
	q, _ := instant(t, ms)

	err := q.Deliver(context.Background(), reply.Reply{{Author: "A", Body: "1"}}, "sess-1")

	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if n := ms.MessageCount("sess-1"); n != 0 {
		t.Errorf("expected no commits, got %d", n)
	}
}

func TestDeliver_EmptyReply(t *testing.T) {
	ms := testutil.NewMockStore()
	q, slept := instant(t, ms)

	if err := q.Deliver(context.Background(), nil, "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*slept) != 0 || len(ms.OpLog()) != 0 {
		t.Error("empty reply should perform no operations")
	}
}
