package hiring

import (
	"encoding/json"
	"time"
)

const (
	// MaxCoverLetterLength bounds Application.CoverLetter, in characters.
	MaxCoverLetterLength = 2000

	// DefaultInterviewDuration is used when a round is scheduled without a
	// duration, in minutes.
	DefaultInterviewDuration = 60

	MinScore = 0
	MaxScore = 5

	MinFeedbackRating = 1
	MaxFeedbackRating = 5

	MaxQualificationScore = 100
)

// Application is the aggregate root of the hiring pipeline. Notes, interview
// rounds and team assignments are owned by it and addressed by ids that are
// only unique within the application.
type Application struct {
	ID            string            `json:"id"`
	JobID         string            `json:"job"`
	ApplicantID   string            `json:"applicant"`
	CoverLetter   string            `json:"coverLetter"`
	Resume        *Resume           `json:"resume"`
	ApplicantInfo ApplicantSnapshot `json:"applicantInfo"`
	Status        Status            `json:"status"`
	HiringStage   HiringStage       `json:"hiringStage"`
	Score         float64           `json:"score"`
	Assessment
	Notes      []Note       `json:"notes"`
	AssignedTo []TeamMember `json:"assignedTo"`
	Interviews []Interview  `json:"interviews"`
	AppliedAt  time.Time    `json:"appliedAt"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`

	// JobInfo is attached to listing results only. It is never stored.
	JobInfo *JobSummary `json:"jobInfo,omitempty"`
}

// Resume references an uploaded resume file.
type Resume struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// ApplicantSnapshot is the applicant's contact data as it was when the
// application was submitted. Later profile edits do not touch it.
type ApplicantSnapshot struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedIn"`
}

// Assessment holds the fields produced by the external AI assessment
// service. They are stored as received apart from range clamping.
type Assessment struct {
	QualificationScore *int            `json:"aiQualificationScore"`
	MatchedSkills      []string        `json:"aiMatchedSkills"`
	MissingSkills      []string        `json:"aiMissingSkills"`
	Strengths          []string        `json:"aiStrengths"`
	Summary            *string         `json:"aiAssessmentSummary"`
	CoverLetter        *string         `json:"aiCoverLetter"`
	ParsedResume       json.RawMessage `json:"resumeParsedData"`
}

// Author is the denormalized author stamp on notes and replies. Name and
// avatar are copied at write time and never re-synced.
type Author struct {
	AddedBy      string `json:"addedBy"`
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar"`
}

// Note is a top-level employer note with one level of replies.
type Note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Author
	AddedAt time.Time `json:"addedAt"`
	Replies []Reply   `json:"replies"`
}

// Reply answers a Note. It has no replies of its own.
type Reply struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Author
	AddedAt time.Time `json:"addedAt"`
}

// Interview is one scheduled interview round.
type Interview struct {
	ID           string        `json:"id"`
	ScheduledAt  time.Time     `json:"scheduledAt"`
	Duration     int           `json:"duration"`
	Type         InterviewType `json:"type"`
	Location     string        `json:"location"`
	Notes        string        `json:"notes"`
	Status       RoundStatus   `json:"status"`
	Interviewers []string      `json:"interviewers"`
	Feedback     []Feedback    `json:"feedback"`
}

// Feedback is an interviewer's rating of a round.
type Feedback struct {
	ID          string    `json:"id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedBy string    `json:"submittedBy"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// TeamMember is an assigned employer-side user, denormalized at assignment.
type TeamMember struct {
	UserID string `json:"user"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Note returns the top-level note with the given id, or nil.
func (a *Application) Note(id string) *Note {
	for i := range a.Notes {
		if a.Notes[i].ID == id {
			return &a.Notes[i]
		}
	}
	return nil
}

// Interview returns the interview round with the given id, or nil.
func (a *Application) Interview(id string) *Interview {
	for i := range a.Interviews {
		if a.Interviews[i].ID == id {
			return &a.Interviews[i]
		}
	}
	return nil
}

// Job is the slice of a job posting this service reads.
type Job struct {
	ID                string `json:"id"`
	EmployerID        string `json:"employerId"`
	Title             string `json:"title"`
	Company           string `json:"company"`
	ApplicationsCount int    `json:"applicationsCount"`
}

// JobSummary is the job data shown next to an application in listings.
type JobSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// Summary returns the listing view of j.
func (j *Job) Summary() *JobSummary {
	return &JobSummary{ID: j.ID, Title: j.Title, Company: j.Company}
}

// User is the slice of a user profile this service reads.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedIn"`
	Avatar   string `json:"avatar"`
	Role     Role   `json:"role"`
}

// Snapshot copies the user's contact data for a new application.
func (u *User) Snapshot() ApplicantSnapshot {
	return ApplicantSnapshot{Name: u.Name, Email: u.Email, Phone: u.Phone, LinkedIn: u.LinkedIn}
}
