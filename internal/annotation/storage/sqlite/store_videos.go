package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
)

const selectVideo = `
SELECT t.id, t.video_group_id, t.title, t.path, t.content_type, t.position_in_queue, t.created_by_id, t.created_at, t.updated_at, t.del_date
FROM videos t`

// PutVideo persists a video and flushes its recorded events.
func (s *Store) PutVideo(ctx context.Context, act actor.Actor, video *domain.Video) error {
	if video == nil || strings.TrimSpace(video.ID) == "" {
		return fmt.Errorf("video id is required")
	}
	return s.putEntity(ctx, act, putSpec{
		op:       "put video",
		kind:     domain.KindVideo,
		entityID: video.ID,
		updateSQL: `
UPDATE videos AS t
SET title = ?, path = ?, content_type = ?, position_in_queue = ?, updated_at = ?
WHERE t.id = ?`,
		updateArgs: []any{
			video.Title,
			video.Path,
			video.ContentType,
			video.PositionInQueue,
			toMillis(video.UpdatedAt),
		},
		insertSQL: `
INSERT INTO videos (id, video_group_id, title, path, content_type, position_in_queue, created_by_id, created_at, updated_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		insertArgs: []any{
			video.ID,
			video.VideoGroupID,
			video.Title,
			video.Path,
			video.ContentType,
			video.PositionInQueue,
			video.CreatedByID,
			toMillis(video.CreatedAt),
			toMillis(video.UpdatedAt),
		},
		events: video.Drain(),
	})
}

// GetVideo returns one video visible to the actor.
func (s *Store) GetVideo(ctx context.Context, act actor.Actor, videoID string) (*domain.Video, error) {
	return getEntity(ctx, s, act, domain.KindVideo, selectVideo, videoID, scanVideo)
}

// ListVideos returns a group's videos visible to the actor. Ordering is
// by creation time like every other list; callers sort by
// PositionInQueue when they need queue order.
func (s *Store) ListVideos(ctx context.Context, act actor.Actor, groupID string) ([]*domain.Video, error) {
	return listEntities(ctx, s, act, domain.KindVideo, selectVideo, "t.video_group_id = ?", groupID, scanVideo)
}

func scanVideo(scan rowScanner) (*domain.Video, error) {
	var video domain.Video
	var createdAt int64
	var updatedAt int64
	var delDate sql.NullInt64
	if err := scan(
		&video.ID,
		&video.VideoGroupID,
		&video.Title,
		&video.Path,
		&video.ContentType,
		&video.PositionInQueue,
		&video.CreatedByID,
		&createdAt,
		&updatedAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	video.CreatedAt = fromMillis(createdAt)
	video.UpdatedAt = fromMillis(updatedAt)
	video.DelDate = fromNullMillis(delDate)
	return &video, nil
}
