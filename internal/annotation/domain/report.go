package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// Report is a generated export of a project's annotations. Reports are
// private to their creator.
type Report struct {
	ID          string
	ProjectID   string
	Title       string
	Path        string
	CreatedByID string
	CreatedAt   time.Time
	DelDate     *time.Time

	Recorder
}

// CreateReportInput describes the report to register.
type CreateReportInput struct {
	ProjectID   string
	Title       string
	Path        string
	CreatedByID string
}

// ReportGeneratedPayload is the JSON payload of a report.generated event.
type ReportGeneratedPayload struct {
	ProjectID string `json:"project_id"`
	ReportID  string `json:"report_id"`
}

// CreateReport registers a generated report and records the typed
// report.generated event that downstream consumers decode.
func CreateReport(input CreateReportInput, now func() time.Time, idGenerator func() (string, error)) (*Report, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, apperrors.New(apperrors.CodeReportTitleEmpty, "report title is required")
	}
	if strings.TrimSpace(input.Path) == "" {
		return nil, apperrors.New(apperrors.CodeReportPathEmpty, "report path is required")
	}

	reportID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate report id: %w", err)
	}

	payload, err := json.Marshal(ReportGeneratedPayload{
		ProjectID: input.ProjectID,
		ReportID:  reportID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode report payload: %w", err)
	}

	createdAt := now().UTC()
	report := &Report{
		ID:          reportID,
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Path:        input.Path,
		CreatedByID: input.CreatedByID,
		CreatedAt:   createdAt,
	}
	report.Record(Event{
		ActorID:     input.CreatedByID,
		Message:     "Report generated",
		EventType:   EventTypeReportGenerated,
		PayloadJSON: string(payload),
		OccurredAt:  createdAt,
	})
	return report, nil
}
