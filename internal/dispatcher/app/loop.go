package app

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/storage"
	"github.com/vidmark/vidmark/internal/dispatcher/sink"
)

const (
	defaultConsumer      = "dispatcher"
	defaultBatchSize     = 32
	defaultPollInterval  = 2 * time.Second
	defaultLeaseTTL      = 30 * time.Second
	defaultMaxAttempts   = 8
	defaultRetryBackoff  = 5 * time.Second
	defaultRetryMaxDelay = 5 * time.Minute
)

// Config controls the claim-and-dispatch loop.
type Config struct {
	Consumer      string
	BatchSize     int
	PollInterval  time.Duration
	LeaseTTL      time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
}

func (c Config) normalized() Config {
	c.Consumer = strings.TrimSpace(c.Consumer)
	if c.Consumer == "" {
		c.Consumer = defaultConsumer
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = defaultLeaseTTL
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = defaultRetryMaxDelay
	}
	return c
}

// Loop polls the domain event outbox, leases due events, and delivers
// them to the sink one at a time.
type Loop struct {
	store storage.DomainEventStore
	sink  sink.Sink
	cfg   Config
	now   func() time.Time
}

// New builds a dispatch loop. A nil now falls back to time.Now.
func New(store storage.DomainEventStore, deliverTo sink.Sink, cfg Config, now func() time.Time) *Loop {
	if now == nil {
		now = time.Now
	}
	return &Loop{
		store: store,
		sink:  deliverTo,
		cfg:   cfg.normalized(),
		now:   now,
	}
}

// Run polls until the context ends. Each tick leases one batch and
// processes it; delivery failures never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := l.ProcessOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("dispatch batch: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessOnce leases and dispatches a single batch. Events are delivered
// in append (seq) order. A failed delivery marks the event for retry, or
// dead once the attempt budget is spent, and the batch continues.
func (l *Loop) ProcessOnce(ctx context.Context) error {
	now := l.now().UTC()
	events, err := l.store.LeaseDomainEvents(ctx, l.cfg.Consumer, l.cfg.BatchSize, now, l.cfg.LeaseTTL)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Seq < events[j].Seq })

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.dispatch(ctx, event)
	}
	return nil
}

func (l *Loop) dispatch(ctx context.Context, event storage.DomainEventRecord) {
	deliverErr := l.sink.Deliver(ctx, event)
	now := l.now().UTC()

	if deliverErr == nil {
		if err := l.store.MarkDomainEventSucceeded(ctx, event.ID, l.cfg.Consumer, now); err != nil {
			log.Printf("ack event %s succeeded: %v", event.ID, err)
		}
		return
	}

	// AttemptCount counts finished attempts; this failure is attempt
	// AttemptCount+1.
	attempt := event.AttemptCount + 1
	if attempt >= l.cfg.MaxAttempts {
		log.Printf("event %s dead after %d attempts: %v", event.ID, attempt, deliverErr)
		if err := l.store.MarkDomainEventDead(ctx, event.ID, l.cfg.Consumer, deliverErr.Error(), now); err != nil {
			log.Printf("ack event %s dead: %v", event.ID, err)
		}
		return
	}

	nextAttemptAt := now.Add(l.retryBackoff(attempt))
	log.Printf("event %s attempt %d failed, retrying at %s: %v", event.ID, attempt, nextAttemptAt.Format(time.RFC3339), deliverErr)
	if err := l.store.MarkDomainEventRetry(ctx, event.ID, l.cfg.Consumer, nextAttemptAt, deliverErr.Error()); err != nil {
		log.Printf("ack event %s retry: %v", event.ID, err)
	}
}

// retryBackoff doubles the base delay per finished attempt, capped at the
// configured maximum.
func (l *Loop) retryBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	backoff := l.cfg.RetryBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= l.cfg.RetryMaxDelay {
			return l.cfg.RetryMaxDelay
		}
	}
	if backoff > l.cfg.RetryMaxDelay {
		return l.cfg.RetryMaxDelay
	}
	return backoff
}
