// Package sink defines where dispatched domain events go. The real
// delivery targets (notification hubs, downstream consumers) live outside
// this module; the log sink is the in-process default.
package sink

import (
	"context"
	"encoding/json"
	"log"

	"github.com/vidmark/vidmark/internal/annotation/domain"
	"github.com/vidmark/vidmark/internal/annotation/storage"
)

// Sink delivers one domain event. Delivery is at-least-once: a sink may
// see the same event id again after a dispatcher crash, and must treat
// the id as the dedupe key.
type Sink interface {
	Deliver(ctx context.Context, event storage.DomainEventRecord) error
}

// LogSink writes events to the process log. Typed events get their
// payload decoded for the log line.
type LogSink struct{}

// Deliver implements Sink.
func (LogSink) Deliver(_ context.Context, event storage.DomainEventRecord) error {
	switch event.EventType {
	case domain.EventTypeReportGenerated:
		var payload domain.ReportGeneratedPayload
		if err := json.Unmarshal([]byte(event.PayloadJSON), &payload); err != nil {
			return err
		}
		log.Printf("event %s: report %s generated for project %s", event.ID, payload.ReportID, payload.ProjectID)
	default:
		log.Printf("event %s: %s (actor %s)", event.ID, event.Message, event.ActorID)
	}
	return nil
}

var _ Sink = LogSink{}
