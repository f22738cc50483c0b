package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
)

const selectReport = `
SELECT t.id, t.project_id, t.title, t.path, t.created_by_id, t.created_at, t.del_date
FROM reports t`

// PutReport persists a generated report and flushes its recorded events,
// including the typed report.generated event.
func (s *Store) PutReport(ctx context.Context, act actor.Actor, report *domain.Report) error {
	if report == nil || strings.TrimSpace(report.ID) == "" {
		return fmt.Errorf("report id is required")
	}
	return s.putEntity(ctx, act, putSpec{
		op:       "put report",
		kind:     domain.KindReport,
		entityID: report.ID,
		updateSQL: `
UPDATE reports AS t
SET title = ?, path = ?, updated_at = ?
WHERE t.id = ?`,
		updateArgs: []any{report.Title, report.Path, toMillis(time.Now().UTC())},
		insertSQL: `
INSERT INTO reports (id, project_id, title, path, created_by_id, created_at, updated_at, del_date)
VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		insertArgs: []any{
			report.ID,
			report.ProjectID,
			report.Title,
			report.Path,
			report.CreatedByID,
			toMillis(report.CreatedAt),
			toMillis(report.CreatedAt),
		},
		events: report.Drain(),
	})
}

// GetReport returns one report visible to the actor.
func (s *Store) GetReport(ctx context.Context, act actor.Actor, reportID string) (*domain.Report, error) {
	return getEntity(ctx, s, act, domain.KindReport, selectReport, reportID, scanReport)
}

// ListReports returns a project's reports visible to the actor.
func (s *Store) ListReports(ctx context.Context, act actor.Actor, projectID string) ([]*domain.Report, error) {
	return listEntities(ctx, s, act, domain.KindReport, selectReport, "t.project_id = ?", projectID, scanReport)
}

func scanReport(scan rowScanner) (*domain.Report, error) {
	var report domain.Report
	var createdAt int64
	var delDate sql.NullInt64
	if err := scan(
		&report.ID,
		&report.ProjectID,
		&report.Title,
		&report.Path,
		&report.CreatedByID,
		&createdAt,
		&delDate,
	); err != nil {
		return nil, err
	}
	report.CreatedAt = fromMillis(createdAt)
	report.DelDate = fromNullMillis(delDate)
	return &report, nil
}
