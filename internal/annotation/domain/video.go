package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// Video is a single clip within a video group. PositionInQueue orders the
// clips for annotators.
type Video struct {
	ID              string
	VideoGroupID    string
	Title           string
	Path            string
	ContentType     string
	PositionInQueue int
	CreatedByID     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DelDate         *time.Time

	Recorder
}

// CreateVideoInput describes the metadata needed to add a video.
type CreateVideoInput struct {
	VideoGroupID    string
	Title           string
	Path            string
	ContentType     string
	PositionInQueue int
	CreatedByID     string
}

// CreateVideo adds a new video to a video group.
func CreateVideo(input CreateVideoInput, now func() time.Time, idGenerator func() (string, error)) (*Video, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, apperrors.New(apperrors.CodeVideoTitleEmpty, "video title is required")
	}
	if strings.TrimSpace(input.Path) == "" {
		return nil, apperrors.New(apperrors.CodeVideoPathEmpty, "video path is required")
	}

	videoID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate video id: %w", err)
	}

	createdAt := now().UTC()
	video := &Video{
		ID:              videoID,
		VideoGroupID:    input.VideoGroupID,
		Title:           input.Title,
		Path:            input.Path,
		ContentType:     input.ContentType,
		PositionInQueue: input.PositionInQueue,
		CreatedByID:     input.CreatedByID,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	video.Record(Event{
		ActorID:    input.CreatedByID,
		Message:    "Video added",
		OccurredAt: createdAt,
	})
	return video, nil
}

// Update replaces the video metadata and records an update event. Empty
// path and content type leave the stored values unchanged.
func (v *Video) Update(title, path, contentType string, positionInQueue int, userID string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return apperrors.New(apperrors.CodeVideoTitleEmpty, "video title is required")
	}

	updatedAt := now().UTC()
	v.Title = title
	v.PositionInQueue = positionInQueue
	if path != "" {
		v.Path = path
	}
	if contentType != "" {
		v.ContentType = contentType
	}
	v.UpdatedAt = updatedAt
	v.Record(Event{
		ActorID:    userID,
		Message:    "Video updated",
		OccurredAt: updatedAt,
	})
	return nil
}
