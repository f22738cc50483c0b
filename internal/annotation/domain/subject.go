package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// Subject groups the labels that annotators apply within a project.
type Subject struct {
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

// CreateSubjectInput describes the metadata needed to create a subject.
type CreateSubjectInput struct {
	ProjectID   string
	Name        string
	Description string
	CreatedByID string
}

// CreateSubject creates a new subject under a project.
func CreateSubject(input CreateSubjectInput, now func() time.Time, idGenerator func() (string, error)) (*Subject, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, apperrors.New(apperrors.CodeSubjectNameEmpty, "subject name is required")
	}

	subjectID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate subject id: %w", err)
	}

	createdAt := now().UTC()
	subject := &Subject{
		ID:          subjectID,
		ProjectID:   input.ProjectID,
		Name:        input.Name,
		Description: input.Description,
		CreatedByID: input.CreatedByID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	subject.Record(Event{
		ActorID:    input.CreatedByID,
		Message:    "Subject created",
		OccurredAt: createdAt,
	})
	return subject, nil
}

// Update replaces the subject metadata and records an update event.
func (s *Subject) Update(name, description string, userID string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeSubjectNameEmpty, "subject name is required")
	}

	updatedAt := now().UTC()
	s.Name = name
	s.Description = description
	s.UpdatedAt = updatedAt
	s.Record(Event{
		ActorID:    userID,
		Message:    "Subject updated",
		OccurredAt: updatedAt,
	})
	return nil
}
