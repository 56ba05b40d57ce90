package events_test

import (
	"context"
	"errors"
	"testing"

	"jobmate/hiring-service/internal/events"
	"jobmate/hiring-service/internal/hiring"
	"jobmate/hiring-service/internal/memstore"
)

func TestParseAssessment(t *testing.T) {
	id, a, err := events.ParseAssessment([]byte(`{
		"applicationId": "app-1",
		"qualificationScore": 86.6,
		"matchedSkills": ["Go", "SQL"],
		"missingSkills": null,
		"summary": "solid backend profile",
		"parsedResume": {"years": 6}
	}`))
	if err != nil {
		t.Fatalf("ParseAssessment: %v", err)
	}
	if id != "app-1" {
		t.Errorf("id = %q, want app-1", id)
	}
	if a.QualificationScore == nil || *a.QualificationScore != 87 {
		t.Errorf("QualificationScore = %v, want 87", a.QualificationScore)
	}
	if len(a.MatchedSkills) != 2 || a.MissingSkills != nil {
		t.Errorf("skills = %v / %v", a.MatchedSkills, a.MissingSkills)
	}
	if a.Summary == nil || *a.Summary != "solid backend profile" {
		t.Errorf("Summary = %v", a.Summary)
	}
	if string(a.ParsedResume) != `{"years": 6}` {
		t.Errorf("ParsedResume = %s", a.ParsedResume)
	}
}

func TestParseAssessment_Rejects(t *testing.T) {
	for _, raw := range []string{`not json`, `{}`, `{"applicationId": ""}`} {
		if _, _, err := events.ParseAssessment([]byte(raw)); err == nil {
			t.Errorf("ParseAssessment(%s) should fail", raw)
		}
	}
}

type recorderFunc func(ctx context.Context, id string, a hiring.Assessment) (*hiring.Application, error)

func (f recorderFunc) RecordAssessment(ctx context.Context, id string, a hiring.Assessment) (*hiring.Application, error) {
	return f(ctx, id, a)
}

func TestHandle_IgnoresBadMessagesAndRecorderErrors(t *testing.T) {
	calls := 0
	l := events.NewAssessmentListener(nil, recorderFunc(func(context.Context, string, hiring.Assessment) (*hiring.Application, error) {
		calls++
		return nil, errors.New("boom")
	}))
	l.Handle(context.Background(), []byte(`garbage`))
	l.Handle(context.Background(), []byte(`{"applicationId":"x"}`))
	if calls != 1 {
		t.Errorf("recorder called %d times, want 1", calls)
	}
}

func TestHandle_RecordsClampedAssessment(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.PutUser(hiring.User{ID: "emp", Name: "Erin", Role: hiring.RoleEmployer})
	store.PutUser(hiring.User{ID: "cand", Name: "Cody", Role: hiring.RoleCandidate})
	store.PutJob(hiring.Job{ID: "job", EmployerID: "emp"})
	svc := hiring.NewService(store, store, store, nil, hiring.Policy{})

	app, err := svc.CreateApplication(ctx, hiring.Actor{UserID: "cand", Role: hiring.RoleCandidate}, hiring.CreateInput{JobID: "job"})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	l := events.NewAssessmentListener(nil, svc)
	l.Handle(ctx, []byte(`{"applicationId":"`+app.ID+`","qualificationScore":140,"strengths":["ownership"]}`))

	got, err := store.Get(ctx, app.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.QualificationScore == nil || *got.QualificationScore != 100 {
		t.Errorf("QualificationScore = %v, want clamped to 100", got.QualificationScore)
	}
	if len(got.Strengths) != 1 || got.MatchedSkills == nil {
		t.Errorf("Strengths = %v, MatchedSkills = %v", got.Strengths, got.MatchedSkills)
	}
}

func TestNewPublisher_NilClientIsNop(t *testing.T) {
	p := events.NewPublisher(nil)
	if _, ok := p.(hiring.NopPublisher); !ok {
		t.Fatalf("NewPublisher(nil) = %T, want hiring.NopPublisher", p)
	}
	if err := p.Publish(context.Background(), hiring.Event{Type: hiring.EventApplicationCreated}); err != nil {
		t.Errorf("Publish: %v", err)
	}
}

func TestRun_NoRedisReturnsImmediately(t *testing.T) {
	l := events.NewAssessmentListener(nil, nil)
	if err := l.Run(context.Background()); err != nil {
		t.Errorf("Run: %v", err)
	}
}
