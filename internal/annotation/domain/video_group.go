package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// VideoGroup is an ordered collection of videos within a project.
type VideoGroup struct {
	ID          string
	ProjectID   string
	Name        string
	Description string
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DelDate     *time.Time

	Recorder
}

// CreateVideoGroupInput describes the metadata needed to create a video
// group.
type CreateVideoGroupInput struct {
	ProjectID   string
	Name        string
	Description string
	CreatedByID string
}

// CreateVideoGroup creates a new video group under a project.
func CreateVideoGroup(input CreateVideoGroupInput, now func() time.Time, idGenerator func() (string, error)) (*VideoGroup, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, apperrors.New(apperrors.CodeVideoGroupNameEmpty, "video group name is required")
	}

	groupID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate video group id: %w", err)
	}

	createdAt := now().UTC()
	group := &VideoGroup{
		ID:          groupID,
		ProjectID:   input.ProjectID,
		Name:        input.Name,
		Description: input.Description,
		CreatedByID: input.CreatedByID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	group.Record(Event{
		ActorID:    input.CreatedByID,
		Message:    "Video group created",
		OccurredAt: createdAt,
	})
	return group, nil
}

// Update replaces the video group metadata and records an update event.
func (g *VideoGroup) Update(name, description string, userID string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeVideoGroupNameEmpty, "video group name is required")
	}

	updatedAt := now().UTC()
	g.Name = name
	g.Description = description
	g.UpdatedAt = updatedAt
	g.Record(Event{
		ActorID:    userID,
		Message:    "Video group updated",
		OccurredAt: updatedAt,
	})
	return nil
}
