package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
	"github.com/vidmark/vidmark/internal/annotation/storage"
	"github.com/vidmark/vidmark/internal/annotation/storage/sqlite"
	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "annotation.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return New(store, opts...)
}

func newTestGrants(t *testing.T) *JoinGrants {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	grants, err := NewJoinGrants("vidmark", "vidmark-join", key, 5*time.Minute)
	if err != nil {
		t.Fatalf("new join grants: %v", err)
	}
	return grants
}

func TestCreateProjectRequiresAuthentication(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.CreateProject(context.Background(), actor.Anonymous, "Study", ""); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for anonymous creator, got %v", err)
	}
}

func TestCreateAndUpdateProject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := actor.User("owner-1")

	project, err := svc.CreateProject(ctx, owner, "Study", "first pass")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	updated, err := svc.UpdateProject(ctx, owner, project.ID, "Study v2", "second pass", true)
	if err != nil {
		t.Fatalf("update project: %v", err)
	}
	if updated.Name != "Study v2" || updated.EndedAt == nil {
		t.Fatalf("unexpected update result: name=%q ended=%v", updated.Name, updated.EndedAt)
	}

	if _, err := svc.UpdateProject(ctx, actor.User("stranger"), project.ID, "Hijacked", "", false); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for stranger update, got %v", err)
	}
}

func TestDeleteEntityRejectsUnknownKind(t *testing.T) {
	svc := newTestService(t)
	if err := svc.DeleteEntity(context.Background(), actor.User("owner-1"), "spaceship", "id"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestDeleteProjectHidesIt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := actor.User("owner-1")

	project, err := svc.CreateProject(ctx, owner, "Study", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := svc.DeleteProject(ctx, owner, project.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := svc.UpdateProject(ctx, owner, project.ID, "Study", "", false); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected deleted project to be gone, got %v", err)
	}
}

func TestCreateChildrenRequireVisibleParent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := actor.User("owner-1")
	stranger := actor.User("stranger")

	project, err := svc.CreateProject(ctx, owner, "Study", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	if _, err := svc.CreateSubject(ctx, stranger, project.ID, "Participant A", ""); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for stranger subject create, got %v", err)
	}

	subject, err := svc.CreateSubject(ctx, owner, project.ID, "Participant A", "")
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	group, err := svc.CreateVideoGroup(ctx, owner, project.ID, "Night 1", "")
	if err != nil {
		t.Fatalf("create video group: %v", err)
	}
	if _, err := svc.AddVideo(ctx, stranger, domain.CreateVideoInput{
		VideoGroupID: group.ID,
		Title:        "clip-1",
		Path:         "videos/clip-1.mp4",
	}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for stranger video add, got %v", err)
	}
	if _, err := svc.CreateLabel(ctx, owner, domain.CreateLabelInput{
		SubjectID: subject.ID,
		Name:      "Blink",
		Type:      domain.LabelTypeRange,
	}); err != nil {
		t.Fatalf("create label: %v", err)
	}
}

func TestAssignmentDelegationFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := actor.User("owner-1")
	labeler := actor.User("labeler-1")

	project, err := svc.CreateProject(ctx, owner, "Study", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	subject, err := svc.CreateSubject(ctx, owner, project.ID, "Participant A", "")
	if err != nil {
		t.Fatalf("create subject: %v", err)
	}
	group, err := svc.CreateVideoGroup(ctx, owner, project.ID, "Night 1", "")
	if err != nil {
		t.Fatalf("create video group: %v", err)
	}
	video, err := svc.AddVideo(ctx, owner, domain.CreateVideoInput{
		VideoGroupID: group.ID,
		Title:        "clip-1",
		Path:         "videos/clip-1.mp4",
	})
	if err != nil {
		t.Fatalf("add video: %v", err)
	}
	label, err := svc.CreateLabel(ctx, owner, domain.CreateLabelInput{
		SubjectID: subject.ID,
		Name:      "Blink",
		Type:      domain.LabelTypePoint,
	})
	if err != nil {
		t.Fatalf("create label: %v", err)
	}
	assignment, err := svc.CreateAssignment(ctx, owner, subject.ID, group.ID)
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	// Before delegation the labeler cannot submit annotations: the label
	// and video are invisible.
	if _, err := svc.SubmitAssignedLabel(ctx, labeler, domain.CreateAssignedLabelInput{
		LabelID: label.ID,
		VideoID: video.ID,
		Start:   "00:00:01.000",
		End:     "00:00:01.000",
	}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found before delegation, got %v", err)
	}

	if err := svc.AssignLabeler(ctx, owner, assignment.ID, labeler.UserID); err != nil {
		t.Fatalf("assign labeler: %v", err)
	}
	assigned, err := svc.SubmitAssignedLabel(ctx, labeler, domain.CreateAssignedLabelInput{
		LabelID: label.ID,
		VideoID: video.ID,
		Start:   "00:00:01.000",
		End:     "00:00:01.000",
	})
	if err != nil {
		t.Fatalf("submit assigned label: %v", err)
	}
	if assigned.CreatedByID != labeler.UserID {
		t.Fatalf("expected annotation attributed to labeler, got %q", assigned.CreatedByID)
	}

	if err := svc.UnassignLabeler(ctx, owner, assignment.ID, labeler.UserID); err != nil {
		t.Fatalf("unassign labeler: %v", err)
	}
	if _, err := svc.SubmitAssignedLabel(ctx, labeler, domain.CreateAssignedLabelInput{
		LabelID: label.ID,
		VideoID: video.ID,
		Start:   "00:00:02.000",
		End:     "00:00:02.000",
	}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after delegation revoked, got %v", err)
	}
}

func TestJoinProjectByCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := actor.User("owner-1")
	joiner := actor.User("joiner-1")

	project, err := svc.CreateProject(ctx, owner, "Study", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	minted, err := svc.CreateAccessCode(ctx, owner, project.ID, domain.ExpireIn14Days, 0)
	if err != nil {
		t.Fatalf("create access code: %v", err)
	}
	if minted.Grant != "" {
		t.Fatalf("expected no grant without signer, got %q", minted.Grant)
	}

	joined, err := svc.JoinProjectByCode(ctx, minted.AccessCode.Code, joiner.UserID)
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	if joined.ID != project.ID {
		t.Fatalf("expected project %s, got %s", project.ID, joined.ID)
	}

	// Membership grants the joiner project visibility.
	if _, err := svc.CreateSubject(ctx, joiner, project.ID, "Own subject", ""); err != nil {
		t.Fatalf("joiner create subject: %v", err)
	}

	if _, err := svc.JoinProjectByCode(ctx, "WRONGCODE1234567", joiner.UserID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for bad code, got %v", err)
	}
}

func TestJoinProjectByCodeRejectsRetiredCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := actor.User("owner-1")

	project, err := svc.CreateProject(ctx, owner, "Study", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	minted, err := svc.CreateAccessCode(ctx, owner, project.ID, domain.ExpireNever, 0)
	if err != nil {
		t.Fatalf("create access code: %v", err)
	}
	if err := svc.RetireAccessCode(ctx, owner, minted.AccessCode.ID); err != nil {
		t.Fatalf("retire access code: %v", err)
	}

	if _, err := svc.JoinProjectByCode(ctx, minted.AccessCode.Code, "joiner-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for retired code, got %v", err)
	}
}

func TestJoinProjectByGrant(t *testing.T) {
	grants := newTestGrants(t)
	svc := newTestService(t, WithJoinGrants(grants))
	ctx := context.Background()
	owner := actor.User("owner-1")

	project, err := svc.CreateProject(ctx, owner, "Study", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	minted, err := svc.CreateAccessCode(ctx, owner, project.ID, domain.ExpireIn30Days, 0)
	if err != nil {
		t.Fatalf("create access code: %v", err)
	}
	if minted.Grant == "" {
		t.Fatal("expected signed grant when signer configured")
	}

	joined, err := svc.JoinProjectByGrant(ctx, minted.Grant, "joiner-1")
	if err != nil {
		t.Fatalf("join by grant: %v", err)
	}
	if joined.ID != project.ID {
		t.Fatalf("expected project %s, got %s", project.ID, joined.ID)
	}

	if _, err := svc.JoinProjectByGrant(ctx, "not.a.grant", "joiner-1"); !apperrors.Is(err, apperrors.CodeJoinGrantInvalid) {
		t.Fatalf("expected invalid grant error, got %v", err)
	}
}

func TestJoinProjectByGrantRequiresSigner(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.JoinProjectByGrant(context.Background(), "whatever", "joiner-1"); err == nil {
		t.Fatal("expected error without configured signer")
	}
}

func TestGenerateReport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := actor.User("owner-1")

	project, err := svc.CreateProject(ctx, owner, "Study", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	report, err := svc.GenerateReport(ctx, owner, project.ID, "Weekly export", "reports/weekly.csv")
	if err != nil {
		t.Fatalf("generate report: %v", err)
	}
	if report.ProjectID != project.ID {
		t.Fatalf("expected report for project %s, got %s", project.ID, report.ProjectID)
	}

	if _, err := svc.GenerateReport(ctx, actor.User("stranger"), project.ID, "Stolen", "reports/stolen.csv"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for stranger report, got %v", err)
	}
}
