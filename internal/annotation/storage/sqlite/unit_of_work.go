package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
	"github.com/vidmark/vidmark/internal/annotation/storage"
)

type deleteIntent struct {
	kind     domain.Kind
	entityID string
}

// unitOfWork wraps one SQLite transaction. Queued deletes are rewritten
// into tombstone updates at commit, after the actor's visibility predicate
// confirms the row; queued events flush in the same transaction.
type unitOfWork struct {
	tx       *sql.Tx
	act      actor.Actor
	deletes  []deleteIntent
	events   []domain.Event
	finished bool
	now      func() time.Time
}

// BeginUnitOfWork starts a transaction bound to the acting identity.
func (s *Store) BeginUnitOfWork(ctx context.Context, act actor.Actor) (storage.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapWriteError("begin unit of work", err)
	}
	return &unitOfWork{
		tx:  tx,
		act: act,
		now: time.Now,
	}, nil
}

// Delete queues a soft-delete intent. The rewrite happens at commit.
func (u *unitOfWork) Delete(kind domain.Kind, entityID string) {
	u.deletes = append(u.deletes, deleteIntent{kind: kind, entityID: entityID})
}

// RecordEvents queues drained aggregate events for the commit flush.
func (u *unitOfWork) RecordEvents(events []domain.Event) {
	u.events = append(u.events, events...)
}

// Commit rewrites queued deletes into tombstones, records a deletion event
// per tombstoned row, flushes all queued events, and commits. A delete of
// a row the actor cannot see fails the whole commit with ErrNotFound and
// rolls everything back.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.finished {
		return fmt.Errorf("unit of work already finished")
	}

	deletedAt := u.now().UTC()
	for _, intent := range u.deletes {
		if err := tombstoneEntity(ctx, u.tx, u.act, intent.kind, intent.entityID, deletedAt); err != nil {
			u.finished = true
			_ = u.tx.Rollback()
			return err
		}
		u.events = append(u.events, domain.Event{
			ActorID:    u.act.UserID,
			Message:    intent.kind.DisplayName() + " deleted",
			OccurredAt: deletedAt,
		})
	}

	if err := flushDomainEvents(ctx, u.tx, u.events); err != nil {
		u.finished = true
		_ = u.tx.Rollback()
		return err
	}

	if err := u.tx.Commit(); err != nil {
		u.finished = true
		return mapWriteError("commit unit of work", err)
	}
	u.finished = true
	return nil
}

// Rollback discards all queued work. Safe to call after Commit.
func (u *unitOfWork) Rollback() error {
	if u.finished {
		return nil
	}
	u.finished = true
	return u.tx.Rollback()
}

// tombstoneEntity marks one row deleted, guarded by the actor's compiled
// visibility predicate. Zero rows affected means the row is missing,
// already tombstoned, or invisible to the actor; the caller cannot tell
// which.
func tombstoneEntity(ctx context.Context, target execContexter, act actor.Actor, kind domain.Kind, entityID string, deletedAt time.Time) error {
	table, ok := tableByKind[kind]
	if !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	predicate := visibilityByKind[kind]

	query := fmt.Sprintf(`
UPDATE %s AS t
SET del_date = ?, updated_at = ?
WHERE t.id = ?
AND %s
`, table, predicate.where)
	args := append([]any{toMillis(deletedAt), toMillis(deletedAt), entityID}, predicate.args(act)...)

	result, err := target.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(fmt.Sprintf("tombstone %s %s", kind, entityID), err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("tombstone rows affected for %s %s: %w", kind, entityID, err)
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
