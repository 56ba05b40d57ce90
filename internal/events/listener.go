package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/redis/go-redis/v9"

	"jobmate/hiring-service/internal/hiring"
)

// ChannelApplicationAssessed carries results from the AI assessment service.
const ChannelApplicationAssessed = "EVENT_APPLICATION_ASSESSED"

// AssessmentPayload is the message published on ChannelApplicationAssessed.
type AssessmentPayload struct {
	ApplicationID      string          `json:"applicationId"`
	QualificationScore *float64        `json:"qualificationScore"`
	MatchedSkills      []string        `json:"matchedSkills"`
	MissingSkills      []string        `json:"missingSkills"`
	Strengths          []string        `json:"strengths"`
	Summary            *string         `json:"summary"`
	CoverLetter        *string         `json:"coverLetter"`
	ParsedResume       json.RawMessage `json:"parsedResume"`
}

// ParseAssessment decodes a message and converts it to a hiring.Assessment.
// Fractional scores are rounded; range clamping is left to the service.
func ParseAssessment(raw []byte) (string, hiring.Assessment, error) {
	var p AssessmentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", hiring.Assessment{}, fmt.Errorf("decode assessment: %w", err)
	}
	if p.ApplicationID == "" {
		return "", hiring.Assessment{}, errors.New("decode assessment: applicationId is required")
	}
	a := hiring.Assessment{
		MatchedSkills: p.MatchedSkills,
		MissingSkills: p.MissingSkills,
		Strengths:     p.Strengths,
		Summary:       p.Summary,
		CoverLetter:   p.CoverLetter,
		ParsedResume:  p.ParsedResume,
	}
	if p.QualificationScore != nil {
		v := int(math.Round(*p.QualificationScore))
		a.QualificationScore = &v
	}
	return p.ApplicationID, a, nil
}

// Recorder stores assessments; *hiring.Service satisfies it.
type Recorder interface {
	RecordAssessment(ctx context.Context, id string, a hiring.Assessment) (*hiring.Application, error)
}

// AssessmentListener subscribes to ChannelApplicationAssessed and records
// every result it receives.
type AssessmentListener struct {
	rdb      *redis.Client
	recorder Recorder
}

// NewAssessmentListener constructs a listener. Run is a no-op when rdb is nil.
func NewAssessmentListener(rdb *redis.Client, recorder Recorder) *AssessmentListener {
	return &AssessmentListener{rdb: rdb, recorder: recorder}
}

// Run blocks until ctx is cancelled.
func (l *AssessmentListener) Run(ctx context.Context) error {
	if l.rdb == nil {
		slog.Info("assessment listener disabled: no Redis")
		return nil
	}
	sub := l.rdb.Subscribe(ctx, ChannelApplicationAssessed)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChannelApplicationAssessed, err)
	}
	slog.Info("assessment listener subscribed", "channel", ChannelApplicationAssessed)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.Handle(ctx, []byte(msg.Payload))
		}
	}
}

// Handle records one assessment message. Failures are logged, never
// returned: a bad message must not stop the subscription.
func (l *AssessmentListener) Handle(ctx context.Context, raw []byte) {
	id, a, err := ParseAssessment(raw)
	if err != nil {
		slog.Warn("discarding assessment message", "err", err)
		return
	}
	if _, err := l.recorder.RecordAssessment(ctx, id, a); err != nil {
		slog.Warn("record assessment failed", "applicationId", id, "err", err)
		return
	}
	slog.Debug("assessment recorded", "applicationId", id)
}
