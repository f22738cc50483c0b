package domain

import "time"

// Event is a domain event recorded by an aggregate. Message carries the
// human-readable notification content; EventType and PayloadJSON are set
// only for typed events that downstream consumers decode.
type Event struct {
	ActorID     string
	Message     string
	EventType   string
	PayloadJSON string
	OccurredAt  time.Time
}

// EventTypeReportGenerated marks events carrying a ReportGeneratedPayload.
const EventTypeReportGenerated = "report.generated"

// Recorder collects pending domain events on an aggregate. The zero value
// is ready to use. Recorder is not safe for concurrent use; aggregates are
// mutated by one goroutine at a time.
type Recorder struct {
	pending []Event
}

// Record appends an event, stamping OccurredAt when unset.
func (r *Recorder) Record(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	r.pending = append(r.pending, event)
}

// Pending returns the recorded events in record order without clearing
// them.
func (r *Recorder) Pending() []Event {
	return r.pending
}

// Drain returns the recorded events and clears the recorder, so a second
// flush cannot re-emit them.
func (r *Recorder) Drain() []Event {
	events := r.pending
	r.pending = nil
	return events
}

// Clear discards all recorded events.
func (r *Recorder) Clear() {
	r.pending = nil
}
