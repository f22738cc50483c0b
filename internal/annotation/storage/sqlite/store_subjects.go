package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
)

const selectSubject = `
SELECT t.id, t.project_id, t.name, t.description, t.created_by_id, t.created_at, t.updated_at, t.del_date
FROM subjects t`

// PutSubject persists a subject and flushes its recorded events.
func (s *Store) PutSubject(ctx context.Context, act actor.Actor, subject *domain.Subject) error {
	if subject == nil || strings.TrimSpace(subject.ID) == "" {
		return fmt.Errorf("subject id is required")
	}
	return s.putEntity(ctx, act, putSpec{
		op:       "put subject",
		kind:     domain.KindSubject,
		entityID: subject.ID,
		updateSQL: `
UPDATE subjects AS t
SET name = ?, description = ?, updated_at = ?
WHERE t.id = ?`,
		updateArgs: []any{subject.Name, subject.Description, toMillis(subject.UpdatedAt)},
		insertSQL: `
INSERT INTO subjects (id, project_id, name, description, created_by_id, created_at, updated_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		insertArgs: []any{
			subject.ID,
			subject.ProjectID,
			subject.Name,
			subject.Description,
			subject.CreatedByID,
			toMillis(subject.CreatedAt),
			toMillis(subject.UpdatedAt),
		},
		events: subject.Drain(),
	})
}

// GetSubject returns one subject visible to the actor.
func (s *Store) GetSubject(ctx context.Context, act actor.Actor, subjectID string) (*domain.Subject, error) {
	return getEntity(ctx, s, act, domain.KindSubject, selectSubject, subjectID, scanSubject)
}

// ListSubjects returns a project's subjects visible to the actor.
func (s *Store) ListSubjects(ctx context.Context, act actor.Actor, projectID string) ([]*domain.Subject, error) {
	return listEntities(ctx, s, act, domain.KindSubject, selectSubject, "t.project_id = ?", projectID, scanSubject)
}

func scanSubject(scan rowScanner) (*domain.Subject, error) {
	var subject domain.Subject
	var createdAt int64
	var updatedAt int64
	var delDate sql.NullInt64
	if err := scan(
		&subject.ID,
		&subject.ProjectID,
		&subject.Name,
		&subject.Description,
		&subject.CreatedByID,
		&createdAt,
		&updatedAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	subject.CreatedAt = fromMillis(createdAt)
	subject.UpdatedAt = fromMillis(updatedAt)
	subject.DelDate = fromNullMillis(delDate)
	return &subject, nil
}
