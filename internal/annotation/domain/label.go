package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// LabelType constrains how annotators apply a label to a timeline.
type LabelType string

const (
	// LabelTypeRange marks a start/end span on the video timeline.
	LabelTypeRange LabelType = "range"
	// LabelTypePoint marks a single instant.
	LabelTypePoint LabelType = "point"
)

// Label is an annotation category defined under a subject.
type Label struct {
	ID          string
	SubjectID   string
	Name        string
	ColorHex    string
	Type        LabelType
	Shortcut    string
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DelDate     *time.Time

	Recorder
}

// CreateLabelInput describes the metadata needed to create a label.
type CreateLabelInput struct {
	SubjectID   string
	Name        string
	ColorHex    string
	Type        LabelType
	Shortcut    string
	CreatedByID string
}

// CreateLabel creates a new label under a subject.
func CreateLabel(input CreateLabelInput, now func() time.Time, idGenerator func() (string, error)) (*Label, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, apperrors.New(apperrors.CodeLabelNameEmpty, "label name is required")
	}
	if input.Type != LabelTypeRange && input.Type != LabelTypePoint {
		return nil, apperrors.New(apperrors.CodeLabelInvalidType, "label type must be range or point")
	}

	labelID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate label id: %w", err)
	}

	createdAt := now().UTC()
	label := &Label{
		ID:          labelID,
		SubjectID:   input.SubjectID,
		Name:        input.Name,
		ColorHex:    input.ColorHex,
		Type:        input.Type,
		Shortcut:    input.Shortcut,
		CreatedByID: input.CreatedByID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	label.Record(Event{
		ActorID:    input.CreatedByID,
		Message:    "Label created",
		OccurredAt: createdAt,
	})
	return label, nil
}

// Update replaces the label metadata and records an update event.
func (l *Label) Update(name, colorHex string, labelType LabelType, shortcut string, userID string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeLabelNameEmpty, "label name is required")
	}
	if labelType != LabelTypeRange && labelType != LabelTypePoint {
		return apperrors.New(apperrors.CodeLabelInvalidType, "label type must be range or point")
	}

	updatedAt := now().UTC()
	l.Name = name
	l.ColorHex = colorHex
	l.Type = labelType
	l.Shortcut = shortcut
	l.UpdatedAt = updatedAt
	l.Record(Event{
		ActorID:    userID,
		Message:    "Label updated",
		OccurredAt: updatedAt,
	})
	return nil
}
