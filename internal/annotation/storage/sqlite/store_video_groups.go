package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
)

const selectVideoGroup = `
SELECT t.id, t.project_id, t.name, t.description, t.created_by_id, t.created_at, t.updated_at, t.del_date
FROM video_groups t`

// PutVideoGroup persists a video group and flushes its recorded events.
func (s *Store) PutVideoGroup(ctx context.Context, act actor.Actor, group *domain.VideoGroup) error {
	if group == nil || strings.TrimSpace(group.ID) == "" {
		return fmt.Errorf("video group id is required")
	}
	return s.putEntity(ctx, act, putSpec{
		op:       "put video group",
		kind:     domain.KindVideoGroup,
		entityID: group.ID,
		updateSQL: `
UPDATE video_groups AS t
SET name = ?, description = ?, updated_at = ?
WHERE t.id = ?`,
		updateArgs: []any{group.Name, group.Description, toMillis(group.UpdatedAt)},
		insertSQL: `
INSERT INTO video_groups (id, project_id, name, description, created_by_id, created_at, updated_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		insertArgs: []any{
			group.ID,
			group.ProjectID,
			group.Name,
			group.Description,
			group.CreatedByID,
			toMillis(group.CreatedAt),
			toMillis(group.UpdatedAt),
		},
		events: group.Drain(),
	})
}

// GetVideoGroup returns one video group visible to the actor.
func (s *Store) GetVideoGroup(ctx context.Context, act actor.Actor, groupID string) (*domain.VideoGroup, error) {
	return getEntity(ctx, s, act, domain.KindVideoGroup, selectVideoGroup, groupID, scanVideoGroup)
}

// ListVideoGroups returns a project's video groups visible to the actor.
func (s *Store) ListVideoGroups(ctx context.Context, act actor.Actor, projectID string) ([]*domain.VideoGroup, error) {
	return listEntities(ctx, s, act, domain.KindVideoGroup, selectVideoGroup, "t.project_id = ?", projectID, scanVideoGroup)
}

func scanVideoGroup(scan rowScanner) (*domain.VideoGroup, error) {
	var group domain.VideoGroup
	var createdAt int64
	var updatedAt int64
	var delDate sql.NullInt64
	if err := scan(
		&group.ID,
		&group.ProjectID,
		&group.Name,
		&group.Description,
		&group.CreatedByID,
		&createdAt,
		&updatedAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	group.CreatedAt = fromMillis(createdAt)
	group.UpdatedAt = fromMillis(updatedAt)
	group.DelDate = fromNullMillis(delDate)
	return &group, nil
}
