package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
)

const selectAssignedLabel = `
SELECT t.id, t.label_id, t.video_id, t.start_time, t.end_time, t.created_by_id, t.created_at, t.del_date
FROM assigned_labels t`

// PutAssignedLabel persists a submitted annotation and flushes its
// recorded events.
func (s *Store) PutAssignedLabel(ctx context.Context, act actor.Actor, assigned *domain.AssignedLabel) error {
	if assigned == nil || strings.TrimSpace(assigned.ID) == "" {
		return fmt.Errorf("assigned label id is required")
	}
	return s.putEntity(ctx, act, putSpec{
		op:       "put assigned label",
		kind:     domain.KindAssignedLabel,
		entityID: assigned.ID,
		updateSQL: `
UPDATE assigned_labels AS t
SET start_time = ?, end_time = ?, updated_at = ?
WHERE t.id = ?`,
		updateArgs: []any{assigned.Start, assigned.End, toMillis(assigned.CreatedAt)},
		insertSQL: `
INSERT INTO assigned_labels (id, label_id, video_id, start_time, end_time, created_by_id, created_at, updated_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		insertArgs: []any{
			assigned.ID,
			assigned.LabelID,
			assigned.VideoID,
			assigned.Start,
			assigned.End,
			assigned.CreatedByID,
			toMillis(assigned.CreatedAt),
			toMillis(assigned.CreatedAt),
		},
		events: assigned.Drain(),
	})
}

// GetAssignedLabel returns one annotation visible to the actor.
func (s *Store) GetAssignedLabel(ctx context.Context, act actor.Actor, assignedID string) (*domain.AssignedLabel, error) {
	return getEntity(ctx, s, act, domain.KindAssignedLabel, selectAssignedLabel, assignedID, scanAssignedLabel)
}

// ListAssignedLabels returns a video's annotations visible to the actor.
// A labeler sees only their own submissions; the project owner sees all.
func (s *Store) ListAssignedLabels(ctx context.Context, act actor.Actor, videoID string) ([]*domain.AssignedLabel, error) {
	return listEntities(ctx, s, act, domain.KindAssignedLabel, selectAssignedLabel, "t.video_id = ?", videoID, scanAssignedLabel)
}

func scanAssignedLabel(scan rowScanner) (*domain.AssignedLabel, error) {
	var assigned domain.AssignedLabel
	var createdAt int64
	var delDate sql.NullInt64
	if err := scan(
		&assigned.ID,
		&assigned.LabelID,
		&assigned.VideoID,
		&assigned.Start,
		&assigned.End,
		&assigned.CreatedByID,
		&createdAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	assigned.CreatedAt = fromMillis(createdAt)
	assigned.DelDate = fromNullMillis(delDate)
	return &assigned, nil
}
