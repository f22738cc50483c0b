package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// Project is the root aggregate. Subjects, video groups, access codes and
// reports all hang off a project, and most visibility predicates resolve
// through project ownership.
type Project struct {
	ID          string
	Name        string
	Description string
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	EndedAt     *time.Time
	DelDate     *time.Time

	Recorder
}

// CreateProjectInput describes the metadata needed to create a project.
type CreateProjectInput struct {
	Name        string
	Description string
	CreatedByID string
}

// CreateProject creates a new project with a generated ID and records a
// creation event attributed to the creator.
func CreateProject(input CreateProjectInput, now func() time.Time, idGenerator func() (string, error)) (*Project, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, apperrors.New(apperrors.CodeProjectNameEmpty, "project name is required")
	}

	projectID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate project id: %w", err)
	}

	createdAt := now().UTC()
	project := &Project{
		ID:          projectID,
		Name:        input.Name,
		Description: input.Description,
		CreatedByID: input.CreatedByID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	project.Record(Event{
		ActorID:    input.CreatedByID,
		Message:    "Project created",
		OccurredAt: createdAt,
	})
	return project, nil
}

// Update replaces the project metadata and records an update event.
// Finished marks the project as ended; passing false clears the end date.
func (p *Project) Update(name, description string, finished bool, userID string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeProjectNameEmpty, "project name is required")
	}

	updatedAt := now().UTC()
	p.Name = name
	p.Description = description
	p.UpdatedAt = updatedAt
	if finished {
		p.EndedAt = &updatedAt
	} else {
		p.EndedAt = nil
	}
	p.Record(Event{
		ActorID:    userID,
		Message:    "Project updated",
		OccurredAt: updatedAt,
	})
	return nil
}

// RecordLabelerJoined records a membership event when a labeler joins the
// project. The event is attributed to the project owner so the owner sees
// the notification, matching the membership grant semantics.
func (p *Project) RecordLabelerJoined(labelerID string, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	p.Record(Event{
		ActorID:    p.CreatedByID,
		Message:    fmt.Sprintf("User %s joined project %s", labelerID, p.Name),
		OccurredAt: now().UTC(),
	})
}
