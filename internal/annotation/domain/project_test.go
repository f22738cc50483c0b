package domain

import (
	"testing"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func stubIDGenerator(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func TestCreateProject(t *testing.T) {
	createdAt := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	project, err := CreateProject(CreateProjectInput{
		Name:        "  Sleep Study  ",
		Description: "Overnight recordings",
		CreatedByID: "owner-1",
	}, fixedClock(createdAt), stubIDGenerator("project-1"))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	if project.ID != "project-1" {
		t.Fatalf("expected id project-1, got %q", project.ID)
	}
	if project.Name != "Sleep Study" {
		t.Fatalf("expected trimmed name, got %q", project.Name)
	}
	if !project.CreatedAt.Equal(createdAt) || !project.UpdatedAt.Equal(createdAt) {
		t.Fatalf("expected timestamps %v, got created=%v updated=%v", createdAt, project.CreatedAt, project.UpdatedAt)
	}
	if project.EndedAt != nil || project.DelDate != nil {
		t.Fatal("expected new project to be live and unfinished")
	}

	events := project.Pending()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ActorID != "owner-1" || events[0].Message != "Project created" {
		t.Fatalf("unexpected creation event: %+v", events[0])
	}
}

func TestCreateProjectRequiresName(t *testing.T) {
	_, err := CreateProject(CreateProjectInput{Name: "   ", CreatedByID: "owner-1"}, nil, nil)
	if !apperrors.Is(err, apperrors.CodeProjectNameEmpty) {
		t.Fatalf("expected project name error, got %v", err)
	}
}

func TestProjectUpdateFinished(t *testing.T) {
	project, err := CreateProject(CreateProjectInput{Name: "Study", CreatedByID: "owner-1"}, nil, stubIDGenerator("project-1"))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	project.Clear()

	updatedAt := time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)
	if err := project.Update("Study v2", "second pass", true, "owner-1", fixedClock(updatedAt)); err != nil {
		t.Fatalf("update project: %v", err)
	}
	if project.EndedAt == nil || !project.EndedAt.Equal(updatedAt) {
		t.Fatalf("expected EndedAt %v, got %v", updatedAt, project.EndedAt)
	}

	if err := project.Update("Study v2", "second pass", false, "owner-1", fixedClock(updatedAt)); err != nil {
		t.Fatalf("update project: %v", err)
	}
	if project.EndedAt != nil {
		t.Fatal("expected finished=false to clear EndedAt")
	}
	if len(project.Pending()) != 2 {
		t.Fatalf("expected 2 update events, got %d", len(project.Pending()))
	}
}

func TestRecordLabelerJoinedAttributedToOwner(t *testing.T) {
	project, err := CreateProject(CreateProjectInput{Name: "Study", CreatedByID: "owner-1"}, nil, stubIDGenerator("project-1"))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	project.Clear()

	project.RecordLabelerJoined("labeler-9", nil)
	events := project.Pending()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ActorID != "owner-1" {
		t.Fatalf("expected join event attributed to owner, got %q", events[0].ActorID)
	}
}
