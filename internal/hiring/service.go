package hiring

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Policy holds the pipeline rules that differ between deployments.
type Policy struct {
	// InterviewSetsStatus makes ScheduleInterview set Status to Interview in
	// addition to advancing HiringStage.
	InterviewSetsStatus bool
}

// Service encapsulates the hiring pipeline business logic.
// It has no dependency on a transport; HTTP and gRPC both call into it.
type Service struct {
	store   Store
	jobs    JobDirectory
	users   UserDirectory
	events  Publisher
	counter *Counter
	policy  Policy
	now     func() time.Time
	newID   func() string
}

// NewService returns a configured Service. A nil Publisher drops events.
func NewService(store Store, jobs JobDirectory, users UserDirectory, events Publisher, policy Policy) *Service {
	if events == nil {
		events = NopPublisher{}
	}
	return &Service{
		store:   store,
		jobs:    jobs,
		users:   users,
		events:  events,
		counter: NewCounter(store, jobs),
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Counter returns the counter maintainer used by the service.
func (s *Service) Counter() *Counter { return s.counter }

// ─── Application lifecycle ──────────────────────────────────────────────────

// CreateInput is the content of a new application.
type CreateInput struct {
	JobID       string
	ApplicantID string // defaults to the caller
	CoverLetter string
	Resume      *Resume
}

// CreateApplication submits an application to a job. Only the applicant, or
// an admin on their behalf, may create it. The applicant's contact data is
// snapshotted and the job's application count recomputed.
func (s *Service) CreateApplication(ctx context.Context, actor Actor, in CreateInput) (*Application, error) {
	if actor.UserID == "" {
		return nil, ErrForbidden
	}
	applicantID := strings.TrimSpace(in.ApplicantID)
	if applicantID == "" {
		applicantID = actor.UserID
	}
	if applicantID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	jobID := strings.TrimSpace(in.JobID)
	if jobID == "" {
		return nil, invalid("jobId is required")
	}
	if utf8.RuneCountInString(in.CoverLetter) > MaxCoverLetterLength {
		return nil, invalid("cover letter cannot exceed %d characters", MaxCoverLetterLength)
	}
	if in.Resume != nil && in.Resume.URL == "" && in.Resume.Filename == "" {
		in.Resume = nil
	}

	if _, err := s.jobs.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	applicant, err := s.users.GetUser(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	app := &Application{
		JobID:         jobID,
		ApplicantID:   applicantID,
		CoverLetter:   in.CoverLetter,
		Resume:        in.Resume,
		ApplicantInfo: applicant.Snapshot(),
		Status:        StatusPending,
		HiringStage:   StageInReview,
		Notes:         []Note{},
		AssignedTo:    []TeamMember{},
		Interviews:    []Interview{},
		AppliedAt:     now,
	}
	app.Assessment.MatchedSkills = []string{}
	app.Assessment.MissingSkills = []string{}
	app.Assessment.Strengths = []string{}

	created, err := s.store.Insert(ctx, app)
	if err != nil {
		return nil, err
	}

	s.recount(ctx, jobID)
	s.publish(ctx, Event{Type: EventApplicationCreated, ApplicationID: created.ID, JobID: jobID, UserID: actor.UserID})
	s.publish(ctx, Event{Type: CmdAssessApplication, ApplicationID: created.ID, JobID: jobID, UserID: applicantID})
	return created, nil
}

// GetApplication returns an application the caller may read.
func (s *Service) GetApplication(ctx context.Context, actor Actor, id string) (*Application, error) {
	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	job, err := s.jobOf(ctx, app)
	if err != nil {
		return nil, err
	}
	if !CanRead(actor, job, app) {
		return nil, ErrForbidden
	}
	return app, nil
}

// StatusChange sets Status and/or HiringStage. Empty fields are left as they
// are; the two fields are not checked against each other.
type StatusChange struct {
	Status      string
	HiringStage string
}

// UpdateStatus overwrites the status fields given in ch.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id string, ch StatusChange) (*Application, error) {
	var u FieldUpdate
	if ch.Status != "" {
		st, err := ParseStatus(ch.Status)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		u.Status = &st
	}
	if ch.HiringStage != "" {
		stage, err := ParseHiringStage(ch.HiringStage)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		u.HiringStage = &stage
	}
	if u.IsEmpty() {
		return nil, invalid("status or hiringStage is required")
	}

	before, err := s.authorizeManage(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	app, err := s.store.UpdateFields(ctx, id, u)
	if err != nil {
		return nil, err
	}

	if app.Status != before.Status || app.HiringStage != before.HiringStage {
		s.publish(ctx, Event{
			Type:          EventStageChanged,
			ApplicationID: app.ID,
			JobID:         app.JobID,
			UserID:        actor.UserID,
			Data: map[string]string{
				"fromStatus": string(before.Status),
				"toStatus":   string(app.Status),
				"fromStage":  string(before.HiringStage),
				"toStage":    string(app.HiringStage),
			},
		})
	}
	return app, nil
}

// UpdateHiringStage overwrites HiringStage only.
func (s *Service) UpdateHiringStage(ctx context.Context, actor Actor, id, stage string) (*Application, error) {
	if stage == "" {
		return nil, invalid("hiringStage is required")
	}
	return s.UpdateStatus(ctx, actor, id, StatusChange{HiringStage: stage})
}

// UpdateScore sets the employer rating, which must lie in [0, 5].
func (s *Service) UpdateScore(ctx context.Context, actor Actor, id string, score float64) (*Application, error) {
	if math.IsNaN(score) || score < MinScore || score > MaxScore {
		return nil, invalid("score must be between %d and %d", MinScore, MaxScore)
	}
	if _, err := s.authorizeManage(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.store.UpdateFields(ctx, id, FieldUpdate{Score: &score})
}

// AssignTeamMembers replaces the application's team with the given users.
// A nil slice is rejected; an empty one clears the team.
func (s *Service) AssignTeamMembers(ctx context.Context, actor Actor, id string, memberIDs []string) (*Application, error) {
	if memberIDs == nil {
		return nil, invalid("teamMembers must be a list of user ids")
	}
	ids, err := normalizeIDs(memberIDs, "teamMembers")
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizeManage(ctx, actor, id); err != nil {
		return nil, err
	}
	members, err := s.resolveUsers(ctx, ids, "team member")
	if err != nil {
		return nil, err
	}
	team := make([]TeamMember, 0, len(members))
	for _, u := range members {
		team = append(team, TeamMember{UserID: u.ID, Name: u.Name, Avatar: u.Avatar})
	}
	return s.store.UpdateFields(ctx, id, FieldUpdate{AssignedTo: &team})
}

// DeleteApplication removes an application and recomputes its job's count.
// Managers and the applicant may delete it.
func (s *Service) DeleteApplication(ctx context.Context, actor Actor, id string) (*Application, error) {
	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	job, err := s.jobOf(ctx, app)
	if err != nil {
		return nil, err
	}
	if !CanDelete(actor, job, app) {
		return nil, ErrForbidden
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recount(ctx, deleted.JobID)
	s.publish(ctx, Event{Type: EventApplicationDeleted, ApplicationID: deleted.ID, JobID: deleted.JobID, UserID: actor.UserID})
	return deleted, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// jobOf loads the application's job. A job that has since disappeared is
// reported as nil so that admins and the applicant keep access.
func (s *Service) jobOf(ctx context.Context, app *Application) (*Job, error) {
	job, err := s.jobs.GetJob(ctx, app.JobID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return job, err
}

// authorizeManage loads the application and checks the caller may mutate it.
func (s *Service) authorizeManage(ctx context.Context, actor Actor, id string) (*Application, error) {
	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	job, err := s.jobOf(ctx, app)
	if err != nil {
		return nil, err
	}
	if !CanManage(actor, job) {
		return nil, ErrForbidden
	}
	return app, nil
}

// author stamps the caller's current name and avatar.
func (s *Service) author(ctx context.Context, actor Actor) (Author, error) {
	u, err := s.users.GetUser(ctx, actor.UserID)
	if err != nil {
		return Author{}, err
	}
	return Author{AddedBy: u.ID, AuthorName: u.Name, AuthorAvatar: u.Avatar}, nil
}

// resolveUsers looks up every id and fails on the first unknown one.
func (s *Service) resolveUsers(ctx context.Context, ids []string, what string) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(users))
	for _, u := range users {
		found[u.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, NotFound(what + " " + id)
		}
	}
	return users, nil
}

// recount is non-fatal: the periodic sweep repairs a missed recount.
func (s *Service) recount(ctx context.Context, jobID string) {
	if _, err := s.counter.Recount(ctx, jobID); err != nil {
		slog.Warn("recount applications failed", "jobId", jobID, "err", err)
	}
}
