package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
)

const selectLabel = `
SELECT t.id, t.subject_id, t.name, t.color_hex, t.type, t.shortcut, t.created_by_id, t.created_at, t.updated_at, t.del_date
FROM labels t`

// PutLabel persists a label and flushes its recorded events.
func (s *Store) PutLabel(ctx context.Context, act actor.Actor, label *domain.Label) error {
	if label == nil || strings.TrimSpace(label.ID) == "" {
		return fmt.Errorf("label id is required")
	}
	return s.putEntity(ctx, act, putSpec{
		op:       "put label",
		kind:     domain.KindLabel,
		entityID: label.ID,
		updateSQL: `
UPDATE labels AS t
SET name = ?, color_hex = ?, type = ?, shortcut = ?, updated_at = ?
WHERE t.id = ?`,
		updateArgs: []any{
			label.Name,
			label.ColorHex,
			string(label.Type),
			label.Shortcut,
			toMillis(label.UpdatedAt),
		},
		insertSQL: `
INSERT INTO labels (id, subject_id, name, color_hex, type, shortcut, created_by_id, created_at, updated_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		insertArgs: []any{
			label.ID,
			label.SubjectID,
			label.Name,
			label.ColorHex,
			string(label.Type),
			label.Shortcut,
			label.CreatedByID,
			toMillis(label.CreatedAt),
			toMillis(label.UpdatedAt),
		},
		events: label.Drain(),
	})
}

// GetLabel returns one label visible to the actor.
func (s *Store) GetLabel(ctx context.Context, act actor.Actor, labelID string) (*domain.Label, error) {
	return getEntity(ctx, s, act, domain.KindLabel, selectLabel, labelID, scanLabel)
}

// ListLabels returns a subject's labels visible to the actor.
func (s *Store) ListLabels(ctx context.Context, act actor.Actor, subjectID string) ([]*domain.Label, error) {
	return listEntities(ctx, s, act, domain.KindLabel, selectLabel, "t.subject_id = ?", subjectID, scanLabel)
}

func scanLabel(scan rowScanner) (*domain.Label, error) {
	var label domain.Label
	var labelType string
	var createdAt int64
	var updatedAt int64
	var delDate sql.NullInt64
	if err := scan(
		&label.ID,
		&label.SubjectID,
		&label.Name,
		&label.ColorHex,
		&labelType,
		&label.Shortcut,
		&label.CreatedByID,
		&createdAt,
		&updatedAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	label.Type = domain.LabelType(labelType)
	label.CreatedAt = fromMillis(createdAt)
	label.UpdatedAt = fromMillis(updatedAt)
	label.DelDate = fromNullMillis(delDate)
	return &label, nil
}
