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

// PutProject persists a project and flushes its recorded events in one
// transaction. Updates are guarded by the actor's visibility predicate;
// an update of an invisible row reports ErrNotFound without revealing
// whether the row exists.
func (s *Store) PutProject(ctx context.Context, act actor.Actor, project *domain.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if project == nil || strings.TrimSpace(project.ID) == "" {
		return fmt.Errorf("project id is required")
	}

	predicate := visibilityByKind[domain.KindProject]

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("put project", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE projects AS t
SET name = ?, description = ?, updated_at = ?, ended_at = ?
WHERE t.id = ?
AND `+predicate.where,
		append([]any{
			project.Name,
			project.Description,
			toMillis(project.UpdatedAt),
			toNullMillis(project.EndedAt),
			project.ID,
		}, predicate.args(act)...)...,
	)
	if err != nil {
		return mapWriteError("update project", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists int
		scanErr := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, project.ID).Scan(&exists)
		switch {
		case errors.Is(scanErr, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, `
INSERT INTO projects (id, name, description, created_by_id, created_at, updated_at, ended_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
`,
				project.ID,
				project.Name,
				project.Description,
				project.CreatedByID,
				toMillis(project.CreatedAt),
				toMillis(project.UpdatedAt),
				toNullMillis(project.EndedAt),
			); err != nil {
				return mapWriteError("insert project", err)
			}
		case scanErr != nil:
			return fmt.Errorf("check project existence: %w", scanErr)
		default:
			return storage.ErrNotFound
		}
	}

	if err := flushDomainEvents(ctx, tx, project.Drain()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapWriteError("commit put project", err)
	}
	return nil
}

// GetProject returns one project visible to the actor.
func (s *Store) GetProject(ctx context.Context, act actor.Actor, projectID string) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	predicate := visibilityByKind[domain.KindProject]
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT t.id, t.name, t.description, t.created_by_id, t.created_at, t.updated_at, t.ended_at, t.del_date
FROM projects t
WHERE t.id = ?
AND `+predicate.where,
		append([]any{projectID}, predicate.args(act)...)...,
	)
	project, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ListProjects returns every project visible to the actor in creation
// order. Invisible actors get an empty list, not an error.
func (s *Store) ListProjects(ctx context.Context, act actor.Actor) ([]*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	predicate := visibilityByKind[domain.KindProject]
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT t.id, t.name, t.description, t.created_by_id, t.created_at, t.updated_at, t.ended_at, t.del_date
FROM projects t
WHERE `+predicate.where+`
ORDER BY t.created_at ASC, t.id ASC
`, predicate.args(act)...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		project, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// AddProjectLabeler grants a labeler project membership and flushes the
// project's recorded events atomically. The grant requires the project to
// be visible to the actor.
func (s *Store) AddProjectLabeler(ctx context.Context, act actor.Actor, project *domain.Project, labelerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if project == nil || strings.TrimSpace(project.ID) == "" {
		return fmt.Errorf("project id is required")
	}
	labelerID = strings.TrimSpace(labelerID)
	if labelerID == "" {
		return fmt.Errorf("labeler id is required")
	}

	predicate := visibilityByKind[domain.KindProject]

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapWriteError("add project labeler", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var visible int
	scanErr := tx.QueryRowContext(ctx, `
SELECT 1 FROM projects t
WHERE t.id = ?
AND `+predicate.where,
		append([]any{project.ID}, predicate.args(act)...)...,
	).Scan(&visible)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if scanErr != nil {
		return fmt.Errorf("check project visibility: %w", scanErr)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO project_labelers (project_id, labeler_id, added_at)
VALUES (?, ?, ?)
`, project.ID, labelerID, toMillis(time.Now().UTC())); err != nil {
		return mapWriteError("insert project labeler", err)
	}

	if err := flushDomainEvents(ctx, tx, project.Drain()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapWriteError("commit add project labeler", err)
	}
	return nil
}

// ListProjectLabelers returns the labeler ids of a visible project.
func (s *Store) ListProjectLabelers(ctx context.Context, act actor.Actor, projectID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	if _, err := s.GetProject(ctx, act, projectID); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT labeler_id FROM project_labelers
WHERE project_id = ?
ORDER BY added_at ASC, labeler_id ASC
`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project labelers: %w", err)
	}
	defer rows.Close()

	labelers := []string{}
	for rows.Next() {
		var labelerID string
		if err := rows.Scan(&labelerID); err != nil {
			return nil, fmt.Errorf("scan project labeler: %w", err)
		}
		labelers = append(labelers, labelerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project labelers: %w", err)
	}
	return labelers, nil
}

type rowScanner func(dest ...any) error

func scanProject(scan rowScanner) (*domain.Project, error) {
	var project domain.Project
	var createdAt int64
	var updatedAt int64
	var endedAt sql.NullInt64
	var delDate sql.NullInt64
	if err := scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.CreatedByID,
		&createdAt,
		&updatedAt,
		&endedAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	project.CreatedAt = fromMillis(createdAt)
	project.UpdatedAt = fromMillis(updatedAt)
	project.EndedAt = fromNullMillis(endedAt)
	project.DelDate = fromNullMillis(delDate)
	return &project, nil
}
