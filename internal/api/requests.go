// Package api defines the JSON request bodies shared by the HTTP and gRPC
// transports and their conversion to service inputs.
package api

import (
	"net/url"
	"strconv"
	"time"

	"jobmate/hiring-service/internal/hiring"
)

// CreateRequest is the body of POST /applications.
type CreateRequest struct {
	JobID       string         `json:"jobId"`
	ApplicantID string         `json:"applicantId,omitempty"`
	CoverLetter string         `json:"coverLetter"`
	Resume      *hiring.Resume `json:"resume,omitempty"`
}

func (r CreateRequest) Input() hiring.CreateInput {
	return hiring.CreateInput{
		JobID:       r.JobID,
		ApplicantID: r.ApplicantID,
		CoverLetter: r.CoverLetter,
		Resume:      r.Resume,
	}
}

// StatusRequest is the body of PUT /applications/{id}/status.
type StatusRequest struct {
	Status      string `json:"status"`
	HiringStage string `json:"hiringStage"`
}

func (r StatusRequest) Change() hiring.StatusChange {
	return hiring.StatusChange{Status: r.Status, HiringStage: r.HiringStage}
}

// StageRequest is the body of PUT /applications/{id}/stage.
type StageRequest struct {
	HiringStage string `json:"hiringStage"`
}

// ScoreRequest is the body of PUT /applications/{id}/score.
type ScoreRequest struct {
	Score *float64 `json:"score"`
}

// NoteRequest is the body of POST /applications/{id}/notes.
type NoteRequest struct {
	Text          string `json:"text"`
	ReplyToNoteID string `json:"replyToNoteId,omitempty"`
}

// ScheduleRequest is the body of POST /applications/{id}/interviews.
type ScheduleRequest struct {
	ScheduledAt  time.Time `json:"scheduledAt"`
	Duration     int       `json:"duration,omitempty"`
	Type         string    `json:"type"`
	Location     string    `json:"location,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Interviewers []string  `json:"interviewers,omitempty"`
}

func (r ScheduleRequest) Input() hiring.ScheduleInput {
	return hiring.ScheduleInput{
		ScheduledAt:  r.ScheduledAt,
		Duration:     r.Duration,
		Type:         r.Type,
		Location:     r.Location,
		Notes:        r.Notes,
		Interviewers: r.Interviewers,
	}
}

// InterviewUpdateRequest is the body of
// PUT /applications/{id}/interviews/{interviewId}. Absent fields are kept.
type InterviewUpdateRequest struct {
	ScheduledAt  *time.Time `json:"scheduledAt"`
	Duration     *int       `json:"duration"`
	Type         *string    `json:"type"`
	Location     *string    `json:"location"`
	Notes        *string    `json:"notes"`
	Status       *string    `json:"status"`
	Interviewers *[]string  `json:"interviewers"`
}

func (r InterviewUpdateRequest) Update() hiring.InterviewUpdate {
	return hiring.InterviewUpdate{
		ScheduledAt:  r.ScheduledAt,
		Duration:     r.Duration,
		Type:         r.Type,
		Location:     r.Location,
		Notes:        r.Notes,
		Status:       r.Status,
		Interviewers: r.Interviewers,
	}
}

// FeedbackRequest is the body of
// POST /applications/{id}/interviews/{interviewId}/feedback.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AssignRequest is the body of PUT /applications/{id}/assign.
type AssignRequest struct {
	TeamMembers []string `json:"teamMembers"`
}

// ListRequest holds the filter, sort and paging parameters of a listing.
type ListRequest struct {
	EmployerID  string `json:"employerId,omitempty"`
	Status      string `json:"status,omitempty"`
	HiringStage string `json:"hiringStage,omitempty"`
	Search      string `json:"search,omitempty"`
	SortBy      string `json:"sortBy,omitempty"`
	SortOrder   string `json:"sortOrder,omitempty"`
	Page        int    `json:"page,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// ListRequestFromQuery reads a ListRequest from URL query parameters.
func ListRequestFromQuery(q url.Values) (ListRequest, error) {
	r := ListRequest{
		EmployerID:  q.Get("employerId"),
		Status:      q.Get("status"),
		HiringStage: q.Get("hiringStage"),
		Search:      q.Get("search"),
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
	}
	var err error
	if r.Page, err = intParam(q, "page"); err != nil {
		return r, err
	}
	if r.Limit, err = intParam(q, "limit"); err != nil {
		return r, err
	}
	return r, nil
}

func intParam(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &hiring.ValidationError{Msg: key + " must be an integer"}
	}
	return v, nil
}

func (r ListRequest) Options() hiring.ListOptions {
	return hiring.ListOptions{
		Status:      r.Status,
		HiringStage: r.HiringStage,
		Search:      r.Search,
		SortBy:      r.SortBy,
		SortOrder:   r.SortOrder,
		Page:        r.Page,
		Limit:       r.Limit,
	}
}
