package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
	"github.com/vidmark/vidmark/internal/annotation/storage"
)

const selectAssignment = `
SELECT t.id, t.subject_id, t.video_group_id, t.created_by_id, t.created_at, t.updated_at, t.del_date
FROM assignments t`

// PutAssignment persists an assignment, synchronizes its labeler rows,
// and flushes its recorded events in one transaction.
func (s *Store) PutAssignment(ctx context.Context, act actor.Actor, assignment *domain.Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if assignment == nil || strings.TrimSpace(assignment.ID) == "" {
		return fmt.Errorf("assignment id is required")
	}

	predicate := visibilityByKind[domain.KindAssignment]

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("put assignment", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE assignments AS t
SET subject_id = ?, video_group_id = ?, updated_at = ?
WHERE t.id = ?
AND `+predicate.where,
		append([]any{
			assignment.SubjectID,
			assignment.VideoGroupID,
			toMillis(assignment.UpdatedAt),
			assignment.ID,
		}, predicate.args(act)...)...,
	)
	if err != nil {
		return mapWriteError("update assignment", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update assignment rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists int
		scanErr := tx.QueryRowContext(ctx, `SELECT 1 FROM assignments WHERE id = ?`, assignment.ID).Scan(&exists)
		switch {
		case errors.Is(scanErr, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, `
INSERT INTO assignments (id, subject_id, video_group_id, created_by_id, created_at, updated_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, NULL)
`,
				assignment.ID,
				assignment.SubjectID,
				assignment.VideoGroupID,
				assignment.CreatedByID,
				toMillis(assignment.CreatedAt),
				toMillis(assignment.UpdatedAt),
			); err != nil {
				return mapWriteError("insert assignment", err)
			}
		case scanErr != nil:
			return fmt.Errorf("check assignment existence: %w", scanErr)
		default:
			return storage.ErrNotFound
		}
	}

	// Replace labeler delegation wholesale; the aggregate list is the
	// source of truth.
	if _, err := tx.ExecContext(ctx, `DELETE FROM assignment_labelers WHERE assignment_id = ?`, assignment.ID); err != nil {
		return mapWriteError("clear assignment labelers", err)
	}
	addedAt := toMillis(time.Now().UTC())
	for _, labelerID := range assignment.LabelerIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO assignment_labelers (assignment_id, labeler_id, added_at)
VALUES (?, ?, ?)
`, assignment.ID, labelerID, addedAt); err != nil {
			return mapWriteError("insert assignment labeler", err)
		}
	}

	if err := flushDomainEvents(ctx, tx, assignment.Drain()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapWriteError("commit put assignment", err)
	}
	return nil
}

// GetAssignment returns one assignment visible to the actor, with its
// labeler delegation loaded.
func (s *Store) GetAssignment(ctx context.Context, act actor.Actor, assignmentID string) (*domain.Assignment, error) {
	assignment, err := getEntity(ctx, s, act, domain.KindAssignment, selectAssignment, assignmentID, scanAssignment)
	if err != nil {
		return nil, err
	}
	if err := s.loadAssignmentLabelers(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ListAssignments returns a project's assignments visible to the actor.
func (s *Store) ListAssignments(ctx context.Context, act actor.Actor, projectID string) ([]*domain.Assignment, error) {
	assignments, err := listEntities(ctx, s, act, domain.KindAssignment, selectAssignment,
		"t.subject_id IN (SELECT id FROM subjects WHERE project_id = ?)", projectID, scanAssignment)
	if err != nil {
		return nil, err
	}
	for _, assignment := range assignments {
		if err := s.loadAssignmentLabelers(ctx, assignment); err != nil {
			return nil, err
		}
	}
	return assignments, nil
}

func (s *Store) loadAssignmentLabelers(ctx context.Context, assignment *domain.Assignment) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT labeler_id FROM assignment_labelers
WHERE assignment_id = ?
ORDER BY added_at ASC, labeler_id ASC
`, assignment.ID)
	if err != nil {
		return fmt.Errorf("list assignment labelers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var labelerID string
		if err := rows.Scan(&labelerID); err != nil {
			return fmt.Errorf("scan assignment labeler: %w", err)
		}
		assignment.LabelerIDs = append(assignment.LabelerIDs, labelerID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate assignment labelers: %w", err)
	}
	return nil
}

func scanAssignment(scan rowScanner) (*domain.Assignment, error) {
	var assignment domain.Assignment
	var createdAt int64
	var updatedAt int64
	var delDate sql.NullInt64
	if err := scan(
		&assignment.ID,
		&assignment.SubjectID,
		&assignment.VideoGroupID,
		&assignment.CreatedByID,
		&createdAt,
		&updatedAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	assignment.CreatedAt = fromMillis(createdAt)
	assignment.UpdatedAt = fromMillis(updatedAt)
	assignment.DelDate = fromNullMillis(delDate)
	return &assignment, nil
}
