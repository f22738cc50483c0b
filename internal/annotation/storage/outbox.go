package storage

import (
	"context"
	"time"
)

// Domain event outbox statuses. Pending events are due for dispatch;
// leased events belong to one dispatcher until the lease expires;
// succeeded and dead are terminal for dispatchers.
const (
	DomainEventStatusPending   = "pending"
	DomainEventStatusLeased    = "leased"
	DomainEventStatusSucceeded = "succeeded"
	DomainEventStatusDead      = "dead"
)

// DomainEventRecord is a persisted domain event doubling as an outbox row.
// Seq is the append-order sequence assigned at insert; dispatch within a
// batch follows Seq.
type DomainEventRecord struct {
	Seq            int64
	ID             string
	ActorID        string
	Message        string
	EventType      string
	PayloadJSON    string
	OccurredAt     time.Time
	Status         string
	AttemptCount   int
	NextAttemptAt  time.Time
	LeaseOwner     string
	LeaseExpiresAt *time.Time
	LastError      string
	ProcessedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DomainEventStore is the outbox surface used by dispatchers and
// operators. Lease and ack operations are guarded: acks only apply while
// the caller still owns the lease, and a zero-row ack reports ErrNotFound.
type DomainEventStore interface {
	// GetDomainEvent returns one domain event by ID.
	GetDomainEvent(ctx context.Context, eventID string) (DomainEventRecord, error)
	// LeaseDomainEvents claims up to limit due events for consumer. Due
	// means pending with next_attempt_at reached, or leased with an
	// expired lease. Claims are exclusive until the lease expires.
	LeaseDomainEvents(ctx context.Context, consumer string, limit int, now time.Time, leaseTTL time.Duration) ([]DomainEventRecord, error)
	// MarkDomainEventSucceeded finalizes a delivered event.
	MarkDomainEventSucceeded(ctx context.Context, eventID string, consumer string, processedAt time.Time) error
	// MarkDomainEventRetry returns a failed event to pending with a new
	// due time and increments its attempt count.
	MarkDomainEventRetry(ctx context.Context, eventID string, consumer string, nextAttemptAt time.Time, lastError string) error
	// MarkDomainEventDead parks a poison event out of the dispatch path.
	MarkDomainEventDead(ctx context.Context, eventID string, consumer string, lastError string, processedAt time.Time) error
	// RequeueDeadDomainEvent returns a dead event to pending for another
	// dispatch round. Only dead events can be requeued.
	RequeueDeadDomainEvent(ctx context.Context, eventID string, now time.Time) error
	// CountDomainEventsByStatus reports outbox depth per status.
	CountDomainEventsByStatus(ctx context.Context) (map[string]int64, error)
}
