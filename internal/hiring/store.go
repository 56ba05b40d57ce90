package hiring

import (
	"context"
	"time"
)

// Store persists applications. Every mutating method is a single atomic
// write: appends never rewrite sibling entries, and scalar updates are
// last-writer-wins. Methods return the application as it is after the write.
type Store interface {
	// Insert creates app. It returns ErrConflict when a live application
	// for (app.JobID, app.ApplicantID) already exists.
	Insert(ctx context.Context, app *Application) (*Application, error)
	Get(ctx context.Context, id string) (*Application, error)
	// Delete removes the application and returns it as it was.
	Delete(ctx context.Context, id string) (*Application, error)
	List(ctx context.Context, q ListQuery) ([]Application, int, error)
	CountByJob(ctx context.Context, jobID string) (int, error)

	UpdateFields(ctx context.Context, id string, u FieldUpdate) (*Application, error)
	SetAssessment(ctx context.Context, id string, a Assessment) (*Application, error)

	AppendNote(ctx context.Context, id string, n Note) (*Application, error)
	// AppendReply returns a NotFound error for an unknown note id.
	AppendReply(ctx context.Context, id, noteID string, r Reply) (*Application, error)

	AppendInterview(ctx context.Context, id string, iv Interview, eff ScheduleEffects) (*Application, error)
	// UpdateInterview applies p to the round. It refuses a status change out
	// of a terminal round with a ValidationError.
	UpdateInterview(ctx context.Context, id, interviewID string, p InterviewPatch) (*Application, error)
	// AppendFeedback appends f and moves the round to
	// RoundStatusAfterFeedback of its current status.
	AppendFeedback(ctx context.Context, id, interviewID string, f Feedback) (*Application, error)
}

// JobDirectory is the external job catalogue.
type JobDirectory interface {
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobIDs(ctx context.Context) ([]string, error)
	ListJobIDsByEmployer(ctx context.Context, employerID string) ([]string, error)
	SetApplicationsCount(ctx context.Context, jobID string, count int) error
}

// UserDirectory is the external user directory.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*User, error)
	// GetUsers returns the users found, in the order of ids. Unknown ids are
	// skipped.
	GetUsers(ctx context.Context, ids []string) ([]User, error)
}

// FieldUpdate carries the scalar fields to overwrite. Nil fields are left
// unchanged.
type FieldUpdate struct {
	Status      *Status
	HiringStage *HiringStage
	Score       *float64
	AssignedTo  *[]TeamMember
}

// IsEmpty reports whether the update changes nothing.
func (u FieldUpdate) IsEmpty() bool {
	return u.Status == nil && u.HiringStage == nil && u.Score == nil && u.AssignedTo == nil
}

// ScheduleEffects are the aggregate fields written together with a newly
// scheduled round.
type ScheduleEffects struct {
	HiringStage HiringStage
	Status      *Status
}

// InterviewPatch carries the interview fields to overwrite. Nil fields are
// left unchanged.
type InterviewPatch struct {
	ScheduledAt  *time.Time
	Duration     *int
	Type         *InterviewType
	Location     *string
	Notes        *string
	Status       *RoundStatus
	Interviewers *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p InterviewPatch) IsEmpty() bool {
	return p.ScheduledAt == nil && p.Duration == nil && p.Type == nil && p.Location == nil &&
		p.Notes == nil && p.Status == nil && p.Interviewers == nil
}

// Apply writes the patch onto iv.
func (p InterviewPatch) Apply(iv *Interview) {
	if p.ScheduledAt != nil {
		iv.ScheduledAt = *p.ScheduledAt
	}
	if p.Duration != nil {
		iv.Duration = *p.Duration
	}
	if p.Type != nil {
		iv.Type = *p.Type
	}
	if p.Location != nil {
		iv.Location = *p.Location
	}
	if p.Notes != nil {
		iv.Notes = *p.Notes
	}
	if p.Status != nil {
		iv.Status = *p.Status
	}
	if p.Interviewers != nil {
		iv.Interviewers = append([]string(nil), (*p.Interviewers)...)
	}
}

// SortField names a sortable application column.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortAppliedAt SortField = "appliedAt"
	SortUpdatedAt SortField = "updatedAt"
	SortScore     SortField = "score"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery selects applications. At least one of JobIDs or ApplicantID is
// set by the service; an empty JobIDs slice with JobScoped true matches
// nothing.
type ListQuery struct {
	JobIDs      []string
	JobScoped   bool
	ApplicantID string
	Status      Status
	HiringStage HiringStage
	Search      string
	SortBy      SortField
	Descending  bool
	Offset      int
	Limit       int // 0 means no limit
}
