// Package service exposes the annotation business operations over the
// filtered store: project and entity lifecycle, labeler delegation,
// access-code joins, and report generation. Every operation takes the
// acting identity explicitly and relies on the store's compiled
// visibility predicates for isolation.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
	"github.com/vidmark/vidmark/internal/annotation/storage"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// Service wires business operations to the entity store.
type Service struct {
	store  storage.EntityStore
	grants *JoinGrants
	now    func() time.Time
	newID  func() (string, error)
}

// Option customizes a Service.
type Option func(*Service)

// WithJoinGrants enables signed join grants for access codes.
func WithJoinGrants(grants *JoinGrants) Option {
	return func(s *Service) {
		s.grants = grants
	}
}

// WithClock overrides the service clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides id generation, for tests.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// New builds a Service over the given store.
func New(store storage.EntityStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: id.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProject creates a project owned by the actor.
func (s *Service) CreateProject(ctx context.Context, act actor.Actor, name, description string) (*domain.Project, error) {
	if !act.IsAuthenticated {
		return nil, storage.ErrNotFound
	}
	project, err := domain.CreateProject(domain.CreateProjectInput{
		Name:        name,
		Description: description,
		CreatedByID: act.UserID,
	}, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutProject(ctx, act, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject updates a visible project's metadata.
func (s *Service) UpdateProject(ctx context.Context, act actor.Actor, projectID, name, description string, finished bool) (*domain.Project, error) {
	project, err := s.store.GetProject(ctx, act, projectID)
	if err != nil {
		return nil, err
	}
	if err := project.Update(name, description, finished, act.UserID, s.now); err != nil {
		return nil, err
	}
	if err := s.store.PutProject(ctx, act, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteEntity tombstones one governed entity through a unit of work. The
// delete is rewritten to a del_date update at commit; a row the actor
// cannot see fails with ErrNotFound.
func (s *Service) DeleteEntity(ctx context.Context, act actor.Actor, kind domain.Kind, entityID string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	uow, err := s.store.BeginUnitOfWork(ctx, act)
	if err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback()
	}()
	uow.Delete(kind, entityID)
	return uow.Commit(ctx)
}

// DeleteProject tombstones a project.
func (s *Service) DeleteProject(ctx context.Context, act actor.Actor, projectID string) error {
	return s.DeleteEntity(ctx, act, domain.KindProject, projectID)
}

// AddProjectLabeler grants a labeler membership in a visible project.
func (s *Service) AddProjectLabeler(ctx context.Context, act actor.Actor, projectID, labelerID string) error {
	project, err := s.store.GetProject(ctx, act, projectID)
	if err != nil {
		return err
	}
	project.RecordLabelerJoined(labelerID, s.now)
	return s.store.AddProjectLabeler(ctx, act, project, labelerID)
}

// CreateSubject creates a subject under a visible project.
func (s *Service) CreateSubject(ctx context.Context, act actor.Actor, projectID, name, description string) (*domain.Subject, error) {
	if _, err := s.store.GetProject(ctx, act, projectID); err != nil {
		return nil, err
	}
	subject, err := domain.CreateSubject(domain.CreateSubjectInput{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		CreatedByID: act.UserID,
	}, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutSubject(ctx, act, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// CreateVideoGroup creates a video group under a visible project.
func (s *Service) CreateVideoGroup(ctx context.Context, act actor.Actor, projectID, name, description string) (*domain.VideoGroup, error) {
	if _, err := s.store.GetProject(ctx, act, projectID); err != nil {
		return nil, err
	}
	group, err := domain.CreateVideoGroup(domain.CreateVideoGroupInput{
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		CreatedByID: act.UserID,
	}, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutVideoGroup(ctx, act, group); err != nil {
		return nil, err
	}
	return group, nil
}

// AddVideo adds a video to a visible video group.
func (s *Service) AddVideo(ctx context.Context, act actor.Actor, input domain.CreateVideoInput) (*domain.Video, error) {
	if _, err := s.store.GetVideoGroup(ctx, act, input.VideoGroupID); err != nil {
		return nil, err
	}
	input.CreatedByID = act.UserID
	video, err := domain.CreateVideo(input, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutVideo(ctx, act, video); err != nil {
		return nil, err
	}
	return video, nil
}

// CreateLabel creates a label under a visible subject.
func (s *Service) CreateLabel(ctx context.Context, act actor.Actor, input domain.CreateLabelInput) (*domain.Label, error) {
	if _, err := s.store.GetSubject(ctx, act, input.SubjectID); err != nil {
		return nil, err
	}
	input.CreatedByID = act.UserID
	label, err := domain.CreateLabel(input, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutLabel(ctx, act, label); err != nil {
		return nil, err
	}
	return label, nil
}

// CreateAssignment pairs a visible subject with a visible video group.
func (s *Service) CreateAssignment(ctx context.Context, act actor.Actor, subjectID, videoGroupID string) (*domain.Assignment, error) {
	if _, err := s.store.GetSubject(ctx, act, subjectID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetVideoGroup(ctx, act, videoGroupID); err != nil {
		return nil, err
	}
	assignment, err := domain.CreateAssignment(domain.CreateAssignmentInput{
		SubjectID:    subjectID,
		VideoGroupID: videoGroupID,
		CreatedByID:  act.UserID,
	}, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutAssignment(ctx, act, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// AssignLabeler delegates a labeler to a visible assignment.
func (s *Service) AssignLabeler(ctx context.Context, act actor.Actor, assignmentID, labelerID string) error {
	assignment, err := s.store.GetAssignment(ctx, act, assignmentID)
	if err != nil {
		return err
	}
	assignment.AssignLabeler(labelerID, act.UserID, s.now)
	return s.store.PutAssignment(ctx, act, assignment)
}

// UnassignLabeler removes a labeler from a visible assignment.
func (s *Service) UnassignLabeler(ctx context.Context, act actor.Actor, assignmentID, labelerID string) error {
	assignment, err := s.store.GetAssignment(ctx, act, assignmentID)
	if err != nil {
		return err
	}
	assignment.UnassignLabeler(labelerID, act.UserID, s.now)
	return s.store.PutAssignment(ctx, act, assignment)
}

// SubmitAssignedLabel records the actor's annotation against a visible
// label and video.
func (s *Service) SubmitAssignedLabel(ctx context.Context, act actor.Actor, input domain.CreateAssignedLabelInput) (*domain.AssignedLabel, error) {
	if _, err := s.store.GetLabel(ctx, act, input.LabelID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetVideo(ctx, act, input.VideoID); err != nil {
		return nil, err
	}
	input.CreatedByID = act.UserID
	assigned, err := domain.CreateAssignedLabel(input, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutAssignedLabel(ctx, act, assigned); err != nil {
		return nil, err
	}
	return assigned, nil
}

// AccessCodeGrant pairs a minted access code with its signed join grant.
// Grant is empty when join grants are not configured.
type AccessCodeGrant struct {
	AccessCode *domain.AccessCode
	Grant      string
}

// CreateAccessCode mints an access code for a visible project and, when
// configured, a signed join grant wrapping it.
func (s *Service) CreateAccessCode(ctx context.Context, act actor.Actor, projectID string, expiration domain.AccessCodeExpiration, customDays int) (*AccessCodeGrant, error) {
	if _, err := s.store.GetProject(ctx, act, projectID); err != nil {
		return nil, err
	}
	code, err := domain.CreateAccessCode(domain.CreateAccessCodeInput{
		ProjectID:   projectID,
		Expiration:  expiration,
		CustomDays:  customDays,
		CreatedByID: act.UserID,
	}, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutAccessCode(ctx, act, code); err != nil {
		return nil, err
	}

	result := &AccessCodeGrant{AccessCode: code}
	if s.grants != nil {
		grant, err := s.grants.Issue(code.Code, s.now())
		if err != nil {
			return nil, err
		}
		result.Grant = grant
	}
	return result, nil
}

// RetireAccessCode expires a visible access code immediately.
func (s *Service) RetireAccessCode(ctx context.Context, act actor.Actor, codeID string) error {
	code, err := s.store.GetAccessCode(ctx, act, codeID)
	if err != nil {
		return err
	}
	code.Retire(act.UserID, s.now)
	return s.store.PutAccessCode(ctx, act, code)
}

// JoinProjectByCode joins the given user to the project behind a valid
// access code. This is the anonymous entry path: the code is the
// credential, so no actor filters the lookup. The membership grant runs
// under the project owner's authority, which the code carries.
func (s *Service) JoinProjectByCode(ctx context.Context, code string, userID string) (*domain.Project, error) {
	project, err := s.store.GetProjectByAccessCode(ctx, code, s.now())
	if err != nil {
		return nil, err
	}
	project.RecordLabelerJoined(userID, s.now)
	owner := actor.User(project.CreatedByID)
	if err := s.store.AddProjectLabeler(ctx, owner, project, userID); err != nil {
		return nil, err
	}
	return project, nil
}

// JoinProjectByGrant verifies a signed join grant and joins the user to
// the project behind the wrapped access code.
func (s *Service) JoinProjectByGrant(ctx context.Context, grant string, userID string) (*domain.Project, error) {
	if s.grants == nil {
		return nil, fmt.Errorf("join grants are not configured")
	}
	code, err := s.grants.Verify(grant, s.now())
	if err != nil {
		return nil, err
	}
	return s.JoinProjectByCode(ctx, code, userID)
}

// GenerateReport registers a generated report for a visible project and
// emits the typed report.generated event.
func (s *Service) GenerateReport(ctx context.Context, act actor.Actor, projectID, title, path string) (*domain.Report, error) {
	if _, err := s.store.GetProject(ctx, act, projectID); err != nil {
		return nil, err
	}
	report, err := domain.CreateReport(domain.CreateReportInput{
		ProjectID:   projectID,
		Title:       title,
		Path:        path,
		CreatedByID: act.UserID,
	}, s.now, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutReport(ctx, act, report); err != nil {
		return nil, err
	}
	return report, nil
}
