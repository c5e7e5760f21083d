// Package orchestrator runs one end-to-end response cycle per triggering
// user message: select speakers, build the prompt, call the completion
// service, parse the reply, and deliver it. Every failure ends the turn with
// a log entry and no visible effect; nothing propagates to the trigger.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/chat"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/persona"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/prompt"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/reply"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/store"
)

// Completer produces raw model output for a generation request.
type Completer interface {
	Complete(ctx context.Context, req prompt.Request) (string, error)
}

// Deliverer streams a parsed reply into the store.
type Deliverer interface {
	Deliver(ctx context.Context, rpl reply.Reply, sessionID string) error
}

// Picker draws the advisory speaker set for a turn.
type Picker interface {
	Pick(roster []persona.Persona, history []chat.Message) ([]string, int)
}

type Orchestrator struct {
	store     store.ChatStore
	roster    []persona.Persona
	picker    Picker
	builder   *prompt.Builder
	completer Completer
	deliverer Deliverer
	paced     bool
}

func New(
	s store.ChatStore,
	roster []persona.Persona,
	picker Picker,
	builder *prompt.Builder,
	completer Completer,
	deliverer Deliverer,
	paced bool,
) *Orchestrator {
	return &Orchestrator{
		store:     s,
		roster:    roster,
		picker:    picker,
		builder:   builder,
		completer: completer,
		deliverer: deliverer,
		paced:     paced,
	}
}

// HandleUserMessage runs one orchestration cycle for the session. It is
// fire-and-forget: the caller observes no result, and a failed turn simply
// produces no persona messages.
func (o *Orchestrator) HandleUserMessage(ctx context.Context, sessionID string) {
	log := slog.With("session_id", sessionID)

	history, err := o.store.ListMessages(ctx, sessionID)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return
	}

	focus, target := o.picker.Pick(o.roster, history)
	if target == 0 {
		log.Warn("empty roster, nothing to orchestrate")
		return
	}

	req := o.builder.Build(focus, history, target)

	raw, err := o.completer.Complete(ctx, req)
	if err != nil {
		log.Error("completion failed", "error", err)
		return
	}

	rpl, err := reply.Parse(raw)
	if err != nil {
		log.Error("reply parse failed", "error", err)
		return
	}

	if o.paced {
		if err := o.deliverer.Deliver(ctx, rpl, sessionID); err != nil {
			log.Error("delivery aborted", "error", err)
			return
		}
	} else {
		batch := make([]chat.Message, len(rpl))
		for i, m := range rpl {
			batch[i] = chat.Message{Author: m.Author, Body: m.Body, SessionID: sessionID}
		}
		if err := o.store.AppendBatch(ctx, batch); err != nil {
			log.Error("batch delivery failed", "error", err)
			return
		}
	}

	log.Info("turn delivered", "focus", focus, "messages", len(rpl))
}
