package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/storage"
)

type fakeStore struct {
	due []storage.DomainEventRecord

	leasedConsumer string
	succeeded      []string
	retried        map[string]time.Time
	dead           []string
}

func (f *fakeStore) GetDomainEvent(ctx context.Context, eventID string) (storage.DomainEventRecord, error) {
	return storage.DomainEventRecord{}, storage.ErrNotFound
}

func (f *fakeStore) LeaseDomainEvents(ctx context.Context, consumer string, limit int, now time.Time, leaseTTL time.Duration) ([]storage.DomainEventRecord, error) {
	f.leasedConsumer = consumer
	events := f.due
	f.due = nil
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (f *fakeStore) MarkDomainEventSucceeded(ctx context.Context, eventID string, consumer string, processedAt time.Time) error {
	f.succeeded = append(f.succeeded, eventID)
	return nil
}

func (f *fakeStore) MarkDomainEventRetry(ctx context.Context, eventID string, consumer string, nextAttemptAt time.Time, lastError string) error {
	if f.retried == nil {
		f.retried = make(map[string]time.Time)
	}
	f.retried[eventID] = nextAttemptAt
	return nil
}

func (f *fakeStore) MarkDomainEventDead(ctx context.Context, eventID string, consumer string, lastError string, processedAt time.Time) error {
	f.dead = append(f.dead, eventID)
	return nil
}

func (f *fakeStore) RequeueDeadDomainEvent(ctx context.Context, eventID string, now time.Time) error {
	return nil
}

func (f *fakeStore) CountDomainEventsByStatus(ctx context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}

var _ storage.DomainEventStore = (*fakeStore)(nil)

type fakeSink struct {
	delivered []string
	failIDs   map[string]bool
}

func (f *fakeSink) Deliver(ctx context.Context, event storage.DomainEventRecord) error {
	f.delivered = append(f.delivered, event.ID)
	if f.failIDs[event.ID] {
		return errors.New("delivery refused")
	}
	return nil
}

func fixedNow(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestProcessOnceDeliversInAppendOrder(t *testing.T) {
	store := &fakeStore{due: []storage.DomainEventRecord{
		{Seq: 3, ID: "event-3"},
		{Seq: 1, ID: "event-1"},
		{Seq: 2, ID: "event-2"},
	}}
	deliverTo := &fakeSink{}
	loop := New(store, deliverTo, Config{Consumer: "dispatcher-test"}, fixedNow(time.Now()))

	if err := loop.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}

	want := []string{"event-1", "event-2", "event-3"}
	if len(deliverTo.delivered) != len(want) {
		t.Fatalf("expected %d deliveries, got %d", len(want), len(deliverTo.delivered))
	}
	for i, id := range want {
		if deliverTo.delivered[i] != id {
			t.Fatalf("expected delivery order %v, got %v", want, deliverTo.delivered)
		}
	}
	if len(store.succeeded) != 3 {
		t.Fatalf("expected 3 success acks, got %d", len(store.succeeded))
	}
	if store.leasedConsumer != "dispatcher-test" {
		t.Fatalf("expected lease under dispatcher-test, got %q", store.leasedConsumer)
	}
}

func TestProcessOnceContinuesPastFailures(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{due: []storage.DomainEventRecord{
		{Seq: 1, ID: "event-1"},
		{Seq: 2, ID: "event-2", AttemptCount: 0},
		{Seq: 3, ID: "event-3"},
	}}
	deliverTo := &fakeSink{failIDs: map[string]bool{"event-2": true}}
	loop := New(store, deliverTo, Config{RetryBackoff: 5 * time.Second}, fixedNow(now))

	if err := loop.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}

	if len(deliverTo.delivered) != 3 {
		t.Fatalf("expected the batch to continue past the failure, got %d deliveries", len(deliverTo.delivered))
	}
	if len(store.succeeded) != 2 {
		t.Fatalf("expected 2 success acks, got %d", len(store.succeeded))
	}
	next, ok := store.retried["event-2"]
	if !ok {
		t.Fatal("expected event-2 marked for retry")
	}
	if want := now.Add(5 * time.Second); !next.Equal(want) {
		t.Fatalf("expected first retry at %v, got %v", want, next)
	}
}

func TestProcessOnceDeadLettersAtAttemptBudget(t *testing.T) {
	store := &fakeStore{due: []storage.DomainEventRecord{
		{Seq: 1, ID: "event-1", AttemptCount: 7},
	}}
	deliverTo := &fakeSink{failIDs: map[string]bool{"event-1": true}}
	loop := New(store, deliverTo, Config{MaxAttempts: 8}, fixedNow(time.Now()))

	if err := loop.ProcessOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}

	if len(store.dead) != 1 || store.dead[0] != "event-1" {
		t.Fatalf("expected event-1 dead-lettered, got %v", store.dead)
	}
	if len(store.retried) != 0 {
		t.Fatalf("expected no retry at the attempt budget, got %v", store.retried)
	}
}

func TestRetryBackoffDoublesAndCaps(t *testing.T) {
	loop := New(&fakeStore{}, &fakeSink{}, Config{
		RetryBackoff:  5 * time.Second,
		RetryMaxDelay: 5 * time.Minute,
	}, nil)

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
		{7, 5 * time.Minute},
		{20, 5 * time.Minute},
	}
	for _, tc := range cases {
		if got := loop.retryBackoff(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestConfigNormalizedDefaults(t *testing.T) {
	cfg := Config{}.normalized()
	if cfg.Consumer != "dispatcher" {
		t.Fatalf("expected default consumer, got %q", cfg.Consumer)
	}
	if cfg.BatchSize != 32 || cfg.PollInterval != 2*time.Second || cfg.LeaseTTL != 30*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxAttempts != 8 || cfg.RetryBackoff != 5*time.Second || cfg.RetryMaxDelay != 5*time.Minute {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
}
