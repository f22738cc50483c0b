package domain

import (
	"fmt"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// AssignedLabel is a labeler's annotation: a label applied to a span of a
// video. The labeler who submitted it is its creator; other labelers on
// the same assignment cannot see it.
type AssignedLabel struct {
	ID          string
	LabelID     string
	VideoID     string
	Start       string
	End         string
	CreatedByID string
	CreatedAt   time.Time
	DelDate     *time.Time

	Recorder
}

// CreateAssignedLabelInput describes a submitted annotation. Start and End
// are timeline offsets within the video (HH:MM:SS.mmm).
type CreateAssignedLabelInput struct {
	LabelID     string
	VideoID     string
	Start       string
	End         string
	CreatedByID string
}

// CreateAssignedLabel records a labeler's annotation.
func CreateAssignedLabel(input CreateAssignedLabelInput, now func() time.Time, idGenerator func() (string, error)) (*AssignedLabel, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if input.Start == "" || input.End == "" {
		return nil, apperrors.New(apperrors.CodeAssignedLabelEmptyTimes, "assigned label start and end are required")
	}

	assignedID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate assigned label id: %w", err)
	}

	createdAt := now().UTC()
	assigned := &AssignedLabel{
		ID:          assignedID,
		LabelID:     input.LabelID,
		VideoID:     input.VideoID,
		Start:       input.Start,
		End:         input.End,
		CreatedByID: input.CreatedByID,
		CreatedAt:   createdAt,
	}
	assigned.Record(Event{
		ActorID:    input.CreatedByID,
		Message:    "Label assigned to video",
		OccurredAt: createdAt,
	})
	return assigned, nil
}
