package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
	"github.com/vidmark/vidmark/internal/annotation/storage"
)

// putSpec describes one guarded upsert: try the visibility-guarded update
// first; when it touches nothing, insert if the row is absent, or report
// ErrNotFound if it exists but is invisible or tombstoned.
type putSpec struct {
	op         string
	kind       domain.Kind
	entityID   string
	updateSQL  string // must end before the predicate; "AND <predicate>" is appended
	updateArgs []any  // bound before the entity id and predicate args
	insertSQL  string
	insertArgs []any
	events     []domain.Event
}

func (s *Store) putEntity(ctx context.Context, act actor.Actor, spec putSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if spec.entityID == "" {
		return fmt.Errorf("%s: entity id is required", spec.op)
	}

	table, ok := tableByKind[spec.kind]
	if !ok {
		return fmt.Errorf("%s: unknown entity kind %q", spec.op, spec.kind)
	}
	predicate := visibilityByKind[spec.kind]

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError(spec.op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updateArgs := append(append([]any{}, spec.updateArgs...), spec.entityID)
	updateArgs = append(updateArgs, predicate.args(act)...)
	result, err := tx.ExecContext(ctx, spec.updateSQL+"\nAND "+predicate.where, updateArgs...)
	if err != nil {
		return mapWriteError(spec.op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", spec.op, err)
	}
	if rowsAffected == 0 {
		var exists int
		scanErr := tx.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", spec.entityID).Scan(&exists)
		switch {
		case errors.Is(scanErr, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, spec.insertSQL, spec.insertArgs...); err != nil {
				return mapWriteError(spec.op, err)
			}
		case scanErr != nil:
			return fmt.Errorf("%s existence check: %w", spec.op, scanErr)
		default:
			return storage.ErrNotFound
		}
	}

	if err := flushDomainEvents(ctx, tx, spec.events); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapWriteError("commit "+spec.op, err)
	}
	return nil
}

// getEntity runs one filtered point read: the row id plus the actor's
// predicate in a single statement.
func getEntity[T any](ctx context.Context, s *Store, act actor.Actor, kind domain.Kind, selectSQL string, entityID string, scan func(rowScanner) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if s == nil || s.sqlDB == nil {
		return zero, fmt.Errorf("storage is not configured")
	}

	predicate := visibilityByKind[kind]
	row := s.sqlDB.QueryRowContext(ctx,
		selectSQL+"\nWHERE t.id = ?\nAND "+predicate.where,
		append([]any{entityID}, predicate.args(act)...)...,
	)
	value, err := scan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, storage.ErrNotFound
		}
		return zero, fmt.Errorf("get %s: %w", kind, err)
	}
	return value, nil
}

// listEntities runs one filtered list: an optional parent filter plus the
// actor's predicate, ordered by creation time.
func listEntities[T any](ctx context.Context, s *Store, act actor.Actor, kind domain.Kind, selectSQL string, parentFilter string, parentID string, scan func(rowScanner) (T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	predicate := visibilityByKind[kind]
	query := selectSQL + "\nWHERE "
	args := []any{}
	if parentFilter != "" {
		query += parentFilter + "\nAND "
		args = append(args, parentID)
	}
	query += predicate.where + "\nORDER BY t.created_at ASC, t.id ASC"
	args = append(args, predicate.args(act)...)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	values := []T{}
	for rows.Next() {
		value, err := scan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return values, nil
}
