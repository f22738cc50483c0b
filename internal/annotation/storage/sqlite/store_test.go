package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "annotation.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func seedProject(t *testing.T, store *Store, owner actor.Actor, name string) *domain.Project {
	t.Helper()
	project, err := domain.CreateProject(domain.CreateProjectInput{
		Name:        name,
		CreatedByID: owner.UserID,
	}, nil, nil)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := store.PutProject(context.Background(), owner, project); err != nil {
		t.Fatalf("put project: %v", err)
	}
	return project
}

func seedSubject(t *testing.T, store *Store, owner actor.Actor, projectID, name string) *domain.Subject {
	t.Helper()
	subject, err := domain.CreateSubject(domain.CreateSubjectInput{
		ProjectID:   projectID,
		Name:        name,
		CreatedByID: owner.UserID,
	}, nil, nil)
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	if err := store.PutSubject(context.Background(), owner, subject); err != nil {
		t.Fatalf("put subject: %v", err)
	}
	return subject
}

func seedVideoGroup(t *testing.T, store *Store, owner actor.Actor, projectID, name string) *domain.VideoGroup {
	t.Helper()
	group, err := domain.CreateVideoGroup(domain.CreateVideoGroupInput{
		ProjectID:   projectID,
		Name:        name,
		CreatedByID: owner.UserID,
	}, nil, nil)
	if err != nil {
		t.Fatalf("create video group: %v", err)
	}
	if err := store.PutVideoGroup(context.Background(), owner, group); err != nil {
		t.Fatalf("put video group: %v", err)
	}
	return group
}

func seedVideo(t *testing.T, store *Store, owner actor.Actor, groupID, title string) *domain.Video {
	t.Helper()
	video, err := domain.CreateVideo(domain.CreateVideoInput{
		VideoGroupID: groupID,
		Title:        title,
		Path:         "videos/" + title + ".mp4",
		ContentType:  "video/mp4",
		CreatedByID:  owner.UserID,
	}, nil, nil)
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	if err := store.PutVideo(context.Background(), owner, video); err != nil {
		t.Fatalf("put video: %v", err)
	}
	return video
}

func seedLabel(t *testing.T, store *Store, owner actor.Actor, subjectID, name string) *domain.Label {
	t.Helper()
	label, err := domain.CreateLabel(domain.CreateLabelInput{
		SubjectID:   subjectID,
		Name:        name,
		ColorHex:    "#ff0000",
		Type:        domain.LabelTypeRange,
		CreatedByID: owner.UserID,
	}, nil, nil)
	if err != nil {
		t.Fatalf("create label: %v", err)
	}
	if err := store.PutLabel(context.Background(), owner, label); err != nil {
		t.Fatalf("put label: %v", err)
	}
	return label
}

func seedAssignment(t *testing.T, store *Store, owner actor.Actor, subjectID, groupID string, labelerIDs ...string) *domain.Assignment {
	t.Helper()
	assignment, err := domain.CreateAssignment(domain.CreateAssignmentInput{
		SubjectID:    subjectID,
		VideoGroupID: groupID,
		CreatedByID:  owner.UserID,
	}, nil, nil)
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	for _, labelerID := range labelerIDs {
		assignment.AssignLabeler(labelerID, owner.UserID, nil)
	}
	if err := store.PutAssignment(context.Background(), owner, assignment); err != nil {
		t.Fatalf("put assignment: %v", err)
	}
	return assignment
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotation.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close first: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close second: %v", err)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	at := time.Date(2026, 5, 4, 3, 2, 1, 987000000, time.UTC)
	if got := fromMillis(toMillis(at)); !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
	if got := fromNullMillis(toNullMillis(nil)); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := fromNullMillis(toNullMillis(&at)); got == nil || !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
}
