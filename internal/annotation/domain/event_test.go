package domain

import (
	"testing"
	"time"
)

func TestRecorderStampsOccurredAt(t *testing.T) {
	var r Recorder
	r.Record(Event{ActorID: "user-1", Message: "something happened"})

	pending := r.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending event, got %d", len(pending))
	}
	if pending[0].OccurredAt.IsZero() {
		t.Fatal("expected OccurredAt to be stamped")
	}
}

func TestRecorderKeepsExplicitOccurredAt(t *testing.T) {
	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var r Recorder
	r.Record(Event{ActorID: "user-1", Message: "something happened", OccurredAt: occurred})

	if got := r.Pending()[0].OccurredAt; !got.Equal(occurred) {
		t.Fatalf("expected OccurredAt %v, got %v", occurred, got)
	}
}

func TestRecorderDrainClearsPending(t *testing.T) {
	var r Recorder
	r.Record(Event{Message: "first"})
	r.Record(Event{Message: "second"})

	drained := r.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained events, got %d", len(drained))
	}
	if drained[0].Message != "first" || drained[1].Message != "second" {
		t.Fatalf("expected record order preserved, got %q then %q", drained[0].Message, drained[1].Message)
	}
	if len(r.Pending()) != 0 {
		t.Fatalf("expected no pending events after drain, got %d", len(r.Pending()))
	}
	if again := r.Drain(); len(again) != 0 {
		t.Fatalf("expected second drain to be empty, got %d events", len(again))
	}
}

func TestRecorderClear(t *testing.T) {
	var r Recorder
	r.Record(Event{Message: "discarded"})
	r.Clear()
	if len(r.Pending()) != 0 {
		t.Fatal("expected no pending events after clear")
	}
}
