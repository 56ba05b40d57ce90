package hiring

import (
	"context"
	"log/slog"
)

// Event channels published by the service.
const (
	EventApplicationCreated = "EVENT_APPLICATION_CREATED"
	EventApplicationDeleted = "EVENT_APPLICATION_DELETED"
	EventStageChanged       = "EVENT_STAGE_CHANGED"
	EventInterviewScheduled = "EVENT_INTERVIEW_SCHEDULED"
	EventInterviewFeedback  = "EVENT_INTERVIEW_FEEDBACK"
	CmdAssessApplication    = "CMD_ASSESS_APPLICATION"
)

// Event is a notification about an application change.
type Event struct {
	Type          string            `json:"type"`
	ApplicationID string            `json:"applicationId"`
	JobID         string            `json:"jobId"`
	UserID        string            `json:"userId"`
	Data          map[string]string `json:"data,omitempty"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// publish is non-fatal: delivery failures are logged and dropped.
func (s *Service) publish(ctx context.Context, e Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("publish event failed", "type", e.Type, "applicationId", e.ApplicationID, "err", err)
	}
}
