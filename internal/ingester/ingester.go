// Package ingester consumes chat events from NATS JetStream and launches
// orchestration runs. Moving the trigger onto a stream keeps the store's
// write path decoupled from orchestration: the API publishes after commit
// and never waits on a run.
package ingester

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/chat"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Runner starts one orchestration run for a session.
type Runner interface {
	HandleUserMessage(ctx context.Context, sessionID string)
}

type Ingester struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	runner Runner
	subs   []jetstream.ConsumeContext
	ctx    context.Context
	cancel context.CancelFunc
}

const (
	streamName   = "CHAT_EVENTS"
	consumerName = "mastermind-" + streamName
)

var streamSubjects = []string{"chat.message.>"}

func New(natsURL string, r Runner) (*Ingester, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ictx, ican := context.WithCancel(context.Background())
	return &Ingester{
		nc:     nc,
		js:     js,
		runner: r,
		ctx:    ictx,
		cancel: ican,
	}, nil
}

// Start ensures the chat stream exists, binds a durable consumer, and begins
// consuming.
func (ing *Ingester) Start() error {
	ctx := context.Background()

	if err := ing.ensureStream(ctx); err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}

	consumer, err := ing.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    1,
		AckWait:       30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", consumerName, err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		ing.handleMessage(msg)
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", consumerName, err)
	}

	ing.subs = append(ing.subs, cc)
	slog.Info("subscribed to stream", "stream", streamName, "consumer", consumerName)
	return nil
}

func (ing *Ingester) ensureStream(ctx context.Context) error {
	_, err := ing.js.Stream(ctx, streamName)
	if err == nil {
		return nil
	}

	_, err = ing.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  streamSubjects,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", streamName, err)
	}

	slog.Info("created stream", "name", streamName, "subjects", streamSubjects)
	return nil
}

func (ing *Ingester) handleMessage(msg jetstream.Msg) {
	e, err := events.Normalize(msg.Data())
	if err != nil {
		slog.Warn("malformed event, skipping",
			"subject", msg.Subject(),
			"error", err,
		)
		// Ack to avoid redelivery of permanently broken messages.
		_ = msg.Ack()
		return
	}

	// Only the human participant's messages trigger a run.
	if e.Author != chat.UserAuthor {
		_ = msg.Ack()
		return
	}

	// Ack before the run: a run takes tens of seconds of intentional
	// suspension, and a failed turn is not redelivered (zero-retry policy).
	if err := msg.Ack(); err != nil {
		slog.Warn("failed to ack message", "subject", msg.Subject(), "error", err)
	}

	slog.Info("orchestration run triggered", "session_id", e.SessionID, "event_id", e.EventID)
	go ing.runner.HandleUserMessage(ing.ctx, e.SessionID)
}

// Publish sends a message to NATS. The API server uses this to emit the
// user-message event after its write commits.
func (ing *Ingester) Publish(subject string, data []byte) error {
	return ing.nc.Publish(subject, data)
}

// Close drains subscriptions and closes the NATS connection.
func (ing *Ingester) Close() {
	ing.cancel()
	for _, cc := range ing.subs {
		cc.Stop()
	}
	ing.nc.Drain()
}
