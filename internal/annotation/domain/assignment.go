package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/vidmark/vidmark/internal/platform/id"
)

// Assignment pairs a subject with a video group and carries the labelers
// delegated to annotate that pairing. Delegation through assignments is
// what grants labelers visibility into the project's subjects, video
// groups, videos and labels.
type Assignment struct {
	ID           string
	SubjectID    string
	VideoGroupID string
	LabelerIDs   []string
	CreatedByID  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DelDate      *time.Time

	Recorder
}

// CreateAssignmentInput describes the subject/video-group pairing to
// create.
type CreateAssignmentInput struct {
	SubjectID    string
	VideoGroupID string
	CreatedByID  string
}

// CreateAssignment creates a new assignment with no labelers.
func CreateAssignment(input CreateAssignmentInput, now func() time.Time, idGenerator func() (string, error)) (*Assignment, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	assignmentID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate assignment id: %w", err)
	}

	createdAt := now().UTC()
	assignment := &Assignment{
		ID:           assignmentID,
		SubjectID:    input.SubjectID,
		VideoGroupID: input.VideoGroupID,
		CreatedByID:  input.CreatedByID,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	assignment.Record(Event{
		ActorID:    input.CreatedByID,
		Message:    "Assignment created",
		OccurredAt: createdAt,
	})
	return assignment, nil
}

// Update repoints the assignment at a different subject/video-group
// pairing and records an update event.
func (a *Assignment) Update(subjectID, videoGroupID string, userID string, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	updatedAt := now().UTC()
	a.SubjectID = subjectID
	a.VideoGroupID = videoGroupID
	a.UpdatedAt = updatedAt
	a.Record(Event{
		ActorID:    userID,
		Message:    "Assignment updated",
		OccurredAt: updatedAt,
	})
}

// AssignLabeler delegates a labeler to the assignment. Assigning an
// already-present labeler is a no-op and records nothing.
func (a *Assignment) AssignLabeler(labelerID string, userID string, now func() time.Time) {
	if slices.Contains(a.LabelerIDs, labelerID) {
		return
	}
	if now == nil {
		now = time.Now
	}
	a.LabelerIDs = append(a.LabelerIDs, labelerID)
	a.Record(Event{
		ActorID:    userID,
		Message:    "Labeler assigned",
		OccurredAt: now().UTC(),
	})
}

// UnassignLabeler removes a labeler from the assignment. Removing an
// absent labeler is a no-op and records nothing.
func (a *Assignment) UnassignLabeler(labelerID string, userID string, now func() time.Time) {
	idx := slices.Index(a.LabelerIDs, labelerID)
	if idx < 0 {
		return
	}
	if now == nil {
		now = time.Now
	}
	a.LabelerIDs = slices.Delete(a.LabelerIDs, idx, idx+1)
	a.Record(Event{
		ActorID:    userID,
		Message:    "Labeler unassigned",
		OccurredAt: now().UTC(),
	})
}

// AddLabelers delegates several labelers at once, skipping those already
// present, and records a single event.
func (a *Assignment) AddLabelers(labelerIDs []string, userID string, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	for _, labelerID := range labelerIDs {
		if !slices.Contains(a.LabelerIDs, labelerID) {
			a.LabelerIDs = append(a.LabelerIDs, labelerID)
		}
	}
	a.Record(Event{
		ActorID:    userID,
		Message:    "Labelers added to assignment",
		OccurredAt: now().UTC(),
	})
}

// ClearLabelers removes every labeler and records a single event.
func (a *Assignment) ClearLabelers(userID string, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	a.LabelerIDs = nil
	a.Record(Event{
		ActorID:    userID,
		Message:    "Labelers removed from assignment",
		OccurredAt: now().UTC(),
	})
}
