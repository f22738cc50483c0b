package storage

import (
	"context"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
	"github.com/vidmark/vidmark/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing or not visible to
// the acting identity. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ProjectStore persists projects and their labeler membership.
type ProjectStore interface {
	PutProject(ctx context.Context, act actor.Actor, project *domain.Project) error
	GetProject(ctx context.Context, act actor.Actor, projectID string) (*domain.Project, error)
	ListProjects(ctx context.Context, act actor.Actor) ([]*domain.Project, error)
	AddProjectLabeler(ctx context.Context, act actor.Actor, project *domain.Project, labelerID string) error
	ListProjectLabelers(ctx context.Context, act actor.Actor, projectID string) ([]string, error)
}

// SubjectStore persists subjects.
type SubjectStore interface {
	PutSubject(ctx context.Context, act actor.Actor, subject *domain.Subject) error
	GetSubject(ctx context.Context, act actor.Actor, subjectID string) (*domain.Subject, error)
	ListSubjects(ctx context.Context, act actor.Actor, projectID string) ([]*domain.Subject, error)
}

// VideoGroupStore persists video groups.
type VideoGroupStore interface {
	PutVideoGroup(ctx context.Context, act actor.Actor, group *domain.VideoGroup) error
	GetVideoGroup(ctx context.Context, act actor.Actor, groupID string) (*domain.VideoGroup, error)
	ListVideoGroups(ctx context.Context, act actor.Actor, projectID string) ([]*domain.VideoGroup, error)
}

// VideoStore persists videos.
type VideoStore interface {
	PutVideo(ctx context.Context, act actor.Actor, video *domain.Video) error
	GetVideo(ctx context.Context, act actor.Actor, videoID string) (*domain.Video, error)
	ListVideos(ctx context.Context, act actor.Actor, groupID string) ([]*domain.Video, error)
}

// LabelStore persists labels.
type LabelStore interface {
	PutLabel(ctx context.Context, act actor.Actor, label *domain.Label) error
	GetLabel(ctx context.Context, act actor.Actor, labelID string) (*domain.Label, error)
	ListLabels(ctx context.Context, act actor.Actor, subjectID string) ([]*domain.Label, error)
}

// AssignmentStore persists subject/video-group assignments and their
// labeler delegation.
type AssignmentStore interface {
	PutAssignment(ctx context.Context, act actor.Actor, assignment *domain.Assignment) error
	GetAssignment(ctx context.Context, act actor.Actor, assignmentID string) (*domain.Assignment, error)
	ListAssignments(ctx context.Context, act actor.Actor, projectID string) ([]*domain.Assignment, error)
}

// AssignedLabelStore persists submitted annotations.
type AssignedLabelStore interface {
	PutAssignedLabel(ctx context.Context, act actor.Actor, assigned *domain.AssignedLabel) error
	GetAssignedLabel(ctx context.Context, act actor.Actor, assignedID string) (*domain.AssignedLabel, error)
	ListAssignedLabels(ctx context.Context, act actor.Actor, videoID string) ([]*domain.AssignedLabel, error)
}

// AccessCodeStore persists project access codes. GetProjectByAccessCode is
// the one identity-free read path: it takes no actor, matches only live
// non-expired codes on live projects, and leaks nothing about other rows.
type AccessCodeStore interface {
	PutAccessCode(ctx context.Context, act actor.Actor, code *domain.AccessCode) error
	GetAccessCode(ctx context.Context, act actor.Actor, codeID string) (*domain.AccessCode, error)
	ListAccessCodes(ctx context.Context, act actor.Actor, projectID string) ([]*domain.AccessCode, error)
	GetProjectByAccessCode(ctx context.Context, code string, now time.Time) (*domain.Project, error)
}

// ReportStore persists generated reports.
type ReportStore interface {
	PutReport(ctx context.Context, act actor.Actor, report *domain.Report) error
	GetReport(ctx context.Context, act actor.Actor, reportID string) (*domain.Report, error)
	ListReports(ctx context.Context, act actor.Actor, projectID string) ([]*domain.Report, error)
}

// UnitOfWork batches writes, delete intents, and recorded events into one
// transaction. Deletes are rewritten to tombstones at commit; a delete of
// a row the actor cannot see fails the whole commit with ErrNotFound.
type UnitOfWork interface {
	// Delete queues a soft-delete intent for the given entity.
	Delete(kind domain.Kind, entityID string)
	// RecordEvents queues drained aggregate events for the commit flush.
	RecordEvents(events []domain.Event)
	// Commit rewrites queued deletes into tombstones, flushes queued
	// events, and commits the transaction.
	Commit(ctx context.Context) error
	// Rollback discards all queued work. Safe to call after Commit.
	Rollback() error
}

// UnitOfWorkStore opens unit-of-work transactions bound to an actor.
type UnitOfWorkStore interface {
	BeginUnitOfWork(ctx context.Context, act actor.Actor) (UnitOfWork, error)
}

// EntityStore groups every filtered entity surface.
type EntityStore interface {
	ProjectStore
	SubjectStore
	VideoGroupStore
	VideoStore
	LabelStore
	AssignmentStore
	AssignedLabelStore
	AccessCodeStore
	ReportStore
	UnitOfWorkStore
}
