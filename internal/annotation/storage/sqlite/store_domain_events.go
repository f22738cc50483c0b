package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/domain"
	"github.com/vidmark/vidmark/internal/annotation/storage"
	"github.com/vidmark/vidmark/internal/platform/id"
)

const domainEventColumns = `
	seq,
	id,
	actor_id,
	message,
	event_type,
	payload_json,
	occurred_at,
	status,
	attempt_count,
	next_attempt_at,
	lease_owner,
	lease_expires_at,
	last_error,
	processed_at,
	created_at,
	updated_at`

type domainEventScanner func(dest ...any) error

func scanDomainEvent(scan domainEventScanner) (storage.DomainEventRecord, error) {
	var record storage.DomainEventRecord
	var occurredAt int64
	var nextAttemptAt int64
	var createdAt int64
	var updatedAt int64
	var leaseExpiresAt sql.NullInt64
	var processedAt sql.NullInt64
	if err := scan(
		&record.Seq,
		&record.ID,
		&record.ActorID,
		&record.Message,
		&record.EventType,
		&record.PayloadJSON,
		&occurredAt,
		&record.Status,
		&record.AttemptCount,
		&nextAttemptAt,
		&record.LeaseOwner,
		&leaseExpiresAt,
		&record.LastError,
		&processedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.DomainEventRecord{}, err
	}
	record.OccurredAt = fromMillis(occurredAt)
	record.NextAttemptAt = fromMillis(nextAttemptAt)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	record.LeaseExpiresAt = fromNullMillis(leaseExpiresAt)
	record.ProcessedAt = fromNullMillis(processedAt)
	return record, nil
}

// appendDomainEvent inserts one recorded aggregate event as a pending
// outbox row inside the caller's transaction. The autoincrement seq
// preserves append order for in-batch dispatch ordering.
func appendDomainEvent(ctx context.Context, target execContexter, event domain.Event) error {
	eventID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate domain event id: %w", err)
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	payload := strings.TrimSpace(event.PayloadJSON)
	if payload == "" {
		payload = "{}"
	}

	_, err = target.ExecContext(ctx, `
INSERT INTO domain_events (
	id,
	actor_id,
	message,
	event_type,
	payload_json,
	occurred_at,
	status,
	attempt_count,
	next_attempt_at,
	lease_owner,
	lease_expires_at,
	last_error,
	processed_at,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, '', NULL, '', NULL, ?, ?)
`,
		eventID,
		event.ActorID,
		event.Message,
		event.EventType,
		payload,
		toMillis(occurredAt),
		storage.DomainEventStatusPending,
		toMillis(occurredAt),
		toMillis(occurredAt),
		toMillis(occurredAt),
	)
	if err != nil {
		return fmt.Errorf("append domain event: %w", err)
	}
	return nil
}

// flushDomainEvents appends each drained aggregate event in record order.
func flushDomainEvents(ctx context.Context, target execContexter, events []domain.Event) error {
	for _, event := range events {
		if err := appendDomainEvent(ctx, target, event); err != nil {
			return err
		}
	}
	return nil
}

// GetDomainEvent returns one domain event by ID.
func (s *Store) GetDomainEvent(ctx context.Context, eventID string) (storage.DomainEventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.DomainEventRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.DomainEventRecord{}, fmt.Errorf("storage is not configured")
	}

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.DomainEventRecord{}, fmt.Errorf("event id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT`+domainEventColumns+`
FROM domain_events
WHERE id = ?
`, eventID)
	record, err := scanDomainEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.DomainEventRecord{}, storage.ErrNotFound
		}
		return storage.DomainEventRecord{}, fmt.Errorf("get domain event: %w", err)
	}
	return record, nil
}

// LeaseDomainEvents leases due domain events for one dispatcher.
//
// Candidates are pending rows whose next attempt is due plus leased rows
// whose lease has expired. Each candidate is claimed by a guarded update;
// zero rows affected means another dispatcher won the row and it is
// skipped, never delivered twice within a live lease.
func (s *Store) LeaseDomainEvents(ctx context.Context, consumer string, limit int, now time.Time, leaseTTL time.Duration) ([]storage.DomainEventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	consumer = strings.TrimSpace(consumer)
	if consumer == "" {
		return nil, fmt.Errorf("consumer is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if leaseTTL <= 0 {
		return nil, fmt.Errorf("lease ttl must be greater than zero")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC()
	leaseExpiresAt := now.Add(leaseTTL)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("start lease transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
SELECT id
FROM domain_events
WHERE (
	(status = ? AND next_attempt_at <= ?)
	OR
	(status = ? AND lease_expires_at IS NOT NULL AND lease_expires_at <= ?)
)
ORDER BY next_attempt_at ASC, seq ASC
LIMIT ?
`,
		storage.DomainEventStatusPending,
		toMillis(now),
		storage.DomainEventStatusLeased,
		toMillis(now),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select lease candidates: %w", err)
	}
	candidateIDs := make([]string, 0, limit)
	for rows.Next() {
		var eventID string
		if scanErr := rows.Scan(&eventID); scanErr != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan lease candidate: %w", scanErr)
		}
		candidateIDs = append(candidateIDs, eventID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate lease candidates: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close lease candidates: %w", err)
	}
	if len(candidateIDs) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit empty lease transaction: %w", err)
		}
		return []storage.DomainEventRecord{}, nil
	}

	leased := make([]storage.DomainEventRecord, 0, len(candidateIDs))
	for _, eventID := range candidateIDs {
		result, updateErr := tx.ExecContext(ctx, `
UPDATE domain_events
SET
	status = ?,
	lease_owner = ?,
	lease_expires_at = ?,
	updated_at = ?
WHERE id = ?
AND (
	(status = ? AND next_attempt_at <= ?)
	OR
	(status = ? AND lease_expires_at IS NOT NULL AND lease_expires_at <= ?)
)
`,
			storage.DomainEventStatusLeased,
			consumer,
			toMillis(leaseExpiresAt),
			toMillis(now),
			eventID,
			storage.DomainEventStatusPending,
			toMillis(now),
			storage.DomainEventStatusLeased,
			toMillis(now),
		)
		if updateErr != nil {
			return nil, fmt.Errorf("lease domain event %s: %w", eventID, updateErr)
		}
		rowsAffected, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			return nil, fmt.Errorf("lease rows affected for %s: %w", eventID, rowsErr)
		}
		if rowsAffected == 0 {
			continue
		}

		row := tx.QueryRowContext(ctx, `
SELECT`+domainEventColumns+`
FROM domain_events
WHERE id = ?
`, eventID)
		record, scanErr := scanDomainEvent(row.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan leased domain event %s: %w", eventID, scanErr)
		}
		leased = append(leased, record)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lease transaction: %w", err)
	}
	return leased, nil
}

// MarkDomainEventSucceeded marks one leased domain event as succeeded.
func (s *Store) MarkDomainEventSucceeded(ctx context.Context, eventID string, consumer string, processedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	eventID = strings.TrimSpace(eventID)
	consumer = strings.TrimSpace(consumer)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if consumer == "" {
		return fmt.Errorf("consumer is required")
	}
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}
	processedAt = processedAt.UTC()

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE domain_events
SET
	status = ?,
	lease_owner = '',
	lease_expires_at = NULL,
	last_error = '',
	processed_at = ?,
	updated_at = ?
WHERE id = ?
AND status = ?
AND lease_owner = ?
`,
		storage.DomainEventStatusSucceeded,
		toMillis(processedAt),
		toMillis(processedAt),
		eventID,
		storage.DomainEventStatusLeased,
		consumer,
	)
	if err != nil {
		return fmt.Errorf("mark domain event succeeded: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark domain event succeeded rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkDomainEventRetry returns one leased domain event to pending with a
// new due time.
func (s *Store) MarkDomainEventRetry(ctx context.Context, eventID string, consumer string, nextAttemptAt time.Time, lastError string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	eventID = strings.TrimSpace(eventID)
	consumer = strings.TrimSpace(consumer)
	lastError = strings.TrimSpace(lastError)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if consumer == "" {
		return fmt.Errorf("consumer is required")
	}
	if nextAttemptAt.IsZero() {
		return fmt.Errorf("next attempt at is required")
	}
	now := time.Now().UTC()
	nextAttemptAt = nextAttemptAt.UTC()

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE domain_events
SET
	status = ?,
	attempt_count = attempt_count + 1,
	next_attempt_at = ?,
	lease_owner = '',
	lease_expires_at = NULL,
	last_error = ?,
	processed_at = NULL,
	updated_at = ?
WHERE id = ?
AND status = ?
AND lease_owner = ?
`,
		storage.DomainEventStatusPending,
		toMillis(nextAttemptAt),
		lastError,
		toMillis(now),
		eventID,
		storage.DomainEventStatusLeased,
		consumer,
	)
	if err != nil {
		return fmt.Errorf("mark domain event retry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark domain event retry rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkDomainEventDead marks one leased domain event as dead.
func (s *Store) MarkDomainEventDead(ctx context.Context, eventID string, consumer string, lastError string, processedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	eventID = strings.TrimSpace(eventID)
	consumer = strings.TrimSpace(consumer)
	lastError = strings.TrimSpace(lastError)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if consumer == "" {
		return fmt.Errorf("consumer is required")
	}
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}
	processedAt = processedAt.UTC()

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE domain_events
SET
	status = ?,
	attempt_count = attempt_count + 1,
	lease_owner = '',
	lease_expires_at = NULL,
	last_error = ?,
	processed_at = ?,
	updated_at = ?
WHERE id = ?
AND status = ?
AND lease_owner = ?
`,
		storage.DomainEventStatusDead,
		lastError,
		toMillis(processedAt),
		toMillis(processedAt),
		eventID,
		storage.DomainEventStatusLeased,
		consumer,
	)
	if err != nil {
		return fmt.Errorf("mark domain event dead: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark domain event dead rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RequeueDeadDomainEvent returns one dead domain event to pending so
// dispatchers pick it up again. Attempt count resets so the event gets a
// full retry budget.
func (s *Store) RequeueDeadDomainEvent(ctx context.Context, eventID string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC()

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE domain_events
SET
	status = ?,
	attempt_count = 0,
	next_attempt_at = ?,
	last_error = '',
	processed_at = NULL,
	updated_at = ?
WHERE id = ?
AND status = ?
`,
		storage.DomainEventStatusPending,
		toMillis(now),
		toMillis(now),
		eventID,
		storage.DomainEventStatusDead,
	)
	if err != nil {
		return fmt.Errorf("requeue dead domain event %s: %w", eventID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("requeue dead domain event rows affected %s: %w", eventID, err)
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountDomainEventsByStatus reports outbox depth per status.
func (s *Store) CountDomainEventsByStatus(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT status, COUNT(*)
FROM domain_events
GROUP BY status
`)
	if err != nil {
		return nil, fmt.Errorf("count domain events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan domain event count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domain event counts: %w", err)
	}
	return counts, nil
}
