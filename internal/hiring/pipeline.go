// Package hiring defines the employer-side hiring pipeline for job applications.
//
// An application carries two independent pipeline fields:
//
//	Status       Pending ─► Reviewed ─► Shortlisted ─► Interview ─► Offered ─► Hired
//	             (any) ─► Rejected | Withdrawn
//	HiringStage  In-Review ─► Shortlisted ─► Interview ─► Hired | Declined
//
// Neither field is validated against the other. Employers set them directly;
// scheduling an interview advances HiringStage (and Status, when the
// InterviewSetsStatus policy is on).
//
// Each interview round has its own status graph:
//
//	Scheduled ──► Completed   (first feedback, or explicit update)
//	    │   └───► Cancelled
//	    └───────► Rescheduled ──► Scheduled | Completed | Cancelled
//
// Completed and Cancelled are terminal.
package hiring

import (
	"fmt"
	"slices"
	"strings"
)

// Status is the applicant-facing application status.
type Status string

const (
	StatusPending     Status = "Pending"
	StatusReviewed    Status = "Reviewed"
	StatusShortlisted Status = "Shortlisted"
	StatusInterview   Status = "Interview"
	StatusOffered     Status = "Offered"
	StatusHired       Status = "Hired"
	StatusRejected    Status = "Rejected"
	StatusWithdrawn   Status = "Withdrawn"
)

// ParseStatus converts a raw string to a Status. Matching is case-sensitive.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusReviewed, StatusShortlisted, StatusInterview,
		StatusOffered, StatusHired, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsFinal reports whether no further pipeline work is expected.
func (s Status) IsFinal() bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// HiringStage is the employer-facing pipeline position.
type HiringStage string

const (
	StageInReview    HiringStage = "In-Review"
	StageShortlisted HiringStage = "Shortlisted"
	StageInterview   HiringStage = "Interview"
	StageHired       HiringStage = "Hired"
	StageDeclined    HiringStage = "Declined"
)

// ParseHiringStage converts a raw string to a HiringStage.
func ParseHiringStage(s string) (HiringStage, error) {
	st := HiringStage(s)
	switch st {
	case StageInReview, StageShortlisted, StageInterview, StageHired, StageDeclined:
		return st, nil
	}
	return "", fmt.Errorf("unknown hiring stage %q", s)
}

// IsFinal reports whether the stage is a disposition.
func (s HiringStage) IsFinal() bool { return s == StageHired || s == StageDeclined }

// InterviewType is the format of an interview round.
type InterviewType string

const (
	InterviewPhone       InterviewType = "Phone"
	InterviewVideo       InterviewType = "Video"
	InterviewInPerson    InterviewType = "In-Person"
	InterviewWrittenTest InterviewType = "Written Test"
	InterviewSkillTest   InterviewType = "Skill Test"
)

// ParseInterviewType converts a raw string to an InterviewType.
func ParseInterviewType(s string) (InterviewType, error) {
	t := InterviewType(s)
	switch t {
	case InterviewPhone, InterviewVideo, InterviewInPerson, InterviewWrittenTest, InterviewSkillTest:
		return t, nil
	}
	return "", fmt.Errorf("unknown interview type %q", s)
}

// RoundStatus is the status of a single interview round.
type RoundStatus string

const (
	RoundScheduled   RoundStatus = "Scheduled"
	RoundCompleted   RoundStatus = "Completed"
	RoundCancelled   RoundStatus = "Cancelled"
	RoundRescheduled RoundStatus = "Rescheduled"
)

// ParseRoundStatus converts a raw string to a RoundStatus.
func ParseRoundStatus(s string) (RoundStatus, error) {
	st := RoundStatus(s)
	switch st {
	case RoundScheduled, RoundCompleted, RoundCancelled, RoundRescheduled:
		return st, nil
	}
	return "", fmt.Errorf("unknown interview status %q", s)
}

// TerminalRoundStatuses are the round statuses that accept no further
// status changes.
var TerminalRoundStatuses = []RoundStatus{RoundCompleted, RoundCancelled}

// IsTerminal reports whether the round accepts no further status changes.
func (s RoundStatus) IsTerminal() bool { return slices.Contains(TerminalRoundStatuses, s) }

// IsRoundTransitionAllowed returns true when an explicit update may move a
// round from → to. Any move between non-terminal states is allowed; setting
// the current status again is a no-op and always allowed.
func IsRoundTransitionAllowed(from, to RoundStatus) bool {
	if from == to {
		return true
	}
	return !from.IsTerminal()
}

// StageAfterScheduling is the hiring stage an application moves to when an
// interview round is scheduled, whatever stage it was in before.
func StageAfterScheduling(HiringStage) HiringStage { return StageInterview }

// RoundStatusAfterFeedback is the round status after a feedback entry is
// appended. The first feedback completes the round; later feedback keeps it
// Completed. Cancelled rounds take no feedback.
func RoundStatusAfterFeedback(current RoundStatus) (RoundStatus, error) {
	if slices.Contains(RoundsRefusingFeedback, current) {
		return "", &ValidationError{Msg: fmt.Sprintf("cannot add feedback to a %s interview", strings.ToLower(string(current)))}
	}
	return RoundStatusOnFeedback, nil
}

// RoundStatusOnFeedback is the status every round takes on accepting
// feedback.
const RoundStatusOnFeedback = RoundCompleted

// RoundsRefusingFeedback are the round statuses RoundStatusAfterFeedback
// rejects.
var RoundsRefusingFeedback = []RoundStatus{RoundCancelled}
