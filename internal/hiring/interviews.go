package hiring

import (
	"context"
	"strings"
	"time"
)

// ScheduleInput describes a new interview round.
type ScheduleInput struct {
	ScheduledAt  time.Time
	Duration     int // minutes; 0 means DefaultInterviewDuration
	Type         string
	Location     string
	Notes        string
	Interviewers []string // defaults to the caller
}

// ScheduleInterview appends a Scheduled round and, in the same write, moves
// the application to StageAfterScheduling. With Policy.InterviewSetsStatus
// the application status becomes Interview as well.
func (s *Service) ScheduleInterview(ctx context.Context, actor Actor, id string, in ScheduleInput) (*Application, error) {
	if in.ScheduledAt.IsZero() {
		return nil, invalid("scheduledAt is required")
	}
	typ, err := ParseInterviewType(in.Type)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if in.Duration < 0 {
		return nil, invalid("duration must be positive")
	}
	if in.Duration == 0 {
		in.Duration = DefaultInterviewDuration
	}
	interviewers, err := normalizeIDs(in.Interviewers, "interviewers")
	if err != nil {
		return nil, err
	}

	before, err := s.authorizeManage(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(interviewers) == 0 {
		interviewers = []string{actor.UserID}
	} else if _, err := s.resolveUsers(ctx, interviewers, "interviewer"); err != nil {
		return nil, err
	}

	iv := Interview{
		ID:           s.newID(),
		ScheduledAt:  in.ScheduledAt.UTC(),
		Duration:     in.Duration,
		Type:         typ,
		Location:     in.Location,
		Notes:        in.Notes,
		Status:       RoundScheduled,
		Interviewers: interviewers,
		Feedback:     []Feedback{},
	}
	eff := ScheduleEffects{HiringStage: StageAfterScheduling(before.HiringStage)}
	if s.policy.InterviewSetsStatus {
		st := StatusInterview
		eff.Status = &st
	}

	app, err := s.store.AppendInterview(ctx, id, iv, eff)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{
		Type:          EventInterviewScheduled,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		UserID:        actor.UserID,
		Data:          map[string]string{"interviewId": iv.ID, "scheduledAt": iv.ScheduledAt.Format(time.RFC3339)},
	})
	return app, nil
}

// InterviewUpdate carries the round fields to change. Nil fields are kept.
type InterviewUpdate struct {
	ScheduledAt  *time.Time
	Duration     *int
	Type         *string
	Location     *string
	Notes        *string
	Status       *string
	Interviewers *[]string
}

// UpdateInterview partially updates one round. Status moves out of
// Completed or Cancelled are rejected; other moves are not ordered.
func (s *Service) UpdateInterview(ctx context.Context, actor Actor, id, interviewID string, in InterviewUpdate) (*Application, error) {
	p := InterviewPatch{
		ScheduledAt: in.ScheduledAt,
		Location:    in.Location,
		Notes:       in.Notes,
	}
	if p.ScheduledAt != nil {
		if p.ScheduledAt.IsZero() {
			return nil, invalid("scheduledAt must be a valid time")
		}
		t := p.ScheduledAt.UTC()
		p.ScheduledAt = &t
	}
	if in.Duration != nil {
		if *in.Duration <= 0 {
			return nil, invalid("duration must be positive")
		}
		p.Duration = in.Duration
	}
	if in.Type != nil {
		typ, err := ParseInterviewType(*in.Type)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		p.Type = &typ
	}
	if in.Status != nil {
		st, err := ParseRoundStatus(*in.Status)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		p.Status = &st
	}
	if in.Interviewers != nil {
		ids, err := normalizeIDs(*in.Interviewers, "interviewers")
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, invalid("interviewers must not be empty")
		}
		p.Interviewers = &ids
	}
	if p.IsEmpty() {
		return nil, invalid("no interview fields to update")
	}

	if _, err := s.authorizeManage(ctx, actor, id); err != nil {
		return nil, err
	}
	if p.Interviewers != nil {
		if _, err := s.resolveUsers(ctx, *p.Interviewers, "interviewer"); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateInterview(ctx, id, interviewID, p)
}

// AddInterviewFeedback appends a rating to a round. The first feedback
// completes the round (see RoundStatusAfterFeedback).
func (s *Service) AddInterviewFeedback(ctx context.Context, actor Actor, id, interviewID string, rating int, comment string) (*Application, error) {
	if rating < MinFeedbackRating || rating > MaxFeedbackRating {
		return nil, invalid("rating must be between %d and %d", MinFeedbackRating, MaxFeedbackRating)
	}
	if _, err := s.authorizeManage(ctx, actor, id); err != nil {
		return nil, err
	}

	f := Feedback{
		ID:          s.newID(),
		Rating:      rating,
		Comment:     comment,
		SubmittedBy: actor.UserID,
		SubmittedAt: s.now(),
	}
	app, err := s.store.AppendFeedback(ctx, id, interviewID, f)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{
		Type:          EventInterviewFeedback,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		UserID:        actor.UserID,
		Data:          map[string]string{"interviewId": interviewID},
	})
	return app, nil
}

// normalizeIDs trims and dedupes ids, rejecting blanks.
func normalizeIDs(ids []string, field string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, invalid("%s must not contain empty ids", field)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}
