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

const selectAccessCode = `
SELECT t.id, t.project_id, t.code, t.created_by_id, t.created_at, t.expires_at, t.del_date
FROM access_codes t`

// PutAccessCode persists an access code and flushes its recorded events.
func (s *Store) PutAccessCode(ctx context.Context, act actor.Actor, code *domain.AccessCode) error {
	if code == nil || strings.TrimSpace(code.ID) == "" {
		return fmt.Errorf("access code id is required")
	}
	return s.putEntity(ctx, act, putSpec{
		op:       "put access code",
		kind:     domain.KindAccessCode,
		entityID: code.ID,
		updateSQL: `
UPDATE access_codes AS t
SET expires_at = ?, updated_at = ?
WHERE t.id = ?`,
		updateArgs: []any{toNullMillis(code.ExpiresAt), toMillis(time.Now().UTC())},
		insertSQL: `
INSERT INTO access_codes (id, project_id, code, created_by_id, created_at, updated_at, expires_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		insertArgs: []any{
			code.ID,
			code.ProjectID,
			code.Code,
			code.CreatedByID,
			toMillis(code.CreatedAt),
			toMillis(code.CreatedAt),
			toNullMillis(code.ExpiresAt),
		},
		events: code.Drain(),
	})
}

// GetAccessCode returns one access code visible to the actor.
func (s *Store) GetAccessCode(ctx context.Context, act actor.Actor, codeID string) (*domain.AccessCode, error) {
	return getEntity(ctx, s, act, domain.KindAccessCode, selectAccessCode, codeID, scanAccessCode)
}

// ListAccessCodes returns a project's access codes visible to the actor.
func (s *Store) ListAccessCodes(ctx context.Context, act actor.Actor, projectID string) ([]*domain.AccessCode, error) {
	return listEntities(ctx, s, act, domain.KindAccessCode, selectAccessCode, "t.project_id = ?", projectID, scanAccessCode)
}

// GetProjectByAccessCode resolves a live project from a valid access code.
//
// This is the one identity-free read path: no actor, no visibility
// predicate. The code string is the credential. Expired or retired codes,
// tombstoned codes, and tombstoned projects all report ErrNotFound,
// indistinguishable from a code that never existed.
func (s *Store) GetProjectByAccessCode(ctx context.Context, code string, now time.Time) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, storage.ErrNotFound
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT p.id, p.name, p.description, p.created_by_id, p.created_at, p.updated_at, p.ended_at, p.del_date
FROM access_codes c
JOIN projects p ON p.id = c.project_id
WHERE c.code = ?
AND c.del_date IS NULL
AND (c.expires_at IS NULL OR c.expires_at > ?)
AND p.del_date IS NULL
`, code, toMillis(now))
	project, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get project by access code: %w", err)
	}
	return project, nil
}

func scanAccessCode(scan rowScanner) (*domain.AccessCode, error) {
	var code domain.AccessCode
	var createdAt int64
	var expiresAt sql.NullInt64
	var delDate sql.NullInt64
	if err := scan(
		&code.ID,
		&code.ProjectID,
		&code.Code,
		&code.CreatedByID,
		&createdAt,
		&expiresAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	code.CreatedAt = fromMillis(createdAt)
	code.ExpiresAt = fromNullMillis(expiresAt)
	code.DelDate = fromNullMillis(delDate)
	return &code, nil
}
