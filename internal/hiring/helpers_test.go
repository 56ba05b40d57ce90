package hiring_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"jobmate/hiring-service/internal/hiring"
	"jobmate/hiring-service/internal/memstore"
)

var (
	employer  = hiring.Actor{UserID: "emp", Role: hiring.RoleEmployer}
	colleague = hiring.Actor{UserID: "emp-b", Role: hiring.RoleEmployer}
	outsider  = hiring.Actor{UserID: "emp-x", Role: hiring.RoleEmployer}
	admin     = hiring.Actor{UserID: "root", Role: hiring.RoleAdmin}
	candidate = hiring.Actor{UserID: "cand", Role: hiring.RoleCandidate}
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []hiring.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e hiring.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	ctx    context.Context
	store  *memstore.Store
	svc    *hiring.Service
	events *recordingPublisher
}

func newEnv(t *testing.T, policy hiring.Policy) *env {
	t.Helper()
	store := memstore.New()
	store.PutUser(hiring.User{ID: "emp", Name: "Erin Employer", Avatar: "erin.png", Role: hiring.RoleEmployer})
	store.PutUser(hiring.User{ID: "emp-b", Name: "Ben Colleague", Avatar: "ben.png", Role: hiring.RoleEmployer})
	store.PutUser(hiring.User{ID: "emp-x", Name: "Xena Outsider", Role: hiring.RoleEmployer})
	store.PutUser(hiring.User{ID: "root", Name: "Ada Admin", Role: hiring.RoleAdmin})
	store.PutUser(hiring.User{
		ID: "cand", Name: "Cody Candidate", Email: "cody@mail.test",
		Phone: "+33600000000", LinkedIn: "in/cody", Role: hiring.RoleCandidate,
	})
	store.PutJob(hiring.Job{ID: "job", EmployerID: "emp", Title: "Backend Engineer"})
	store.PutJob(hiring.Job{ID: "job-2", EmployerID: "emp", Title: "SRE"})
	store.PutJob(hiring.Job{ID: "job-x", EmployerID: "emp-x", Title: "Elsewhere"})

	events := &recordingPublisher{}
	return &env{
		ctx:    context.Background(),
		store:  store,
		svc:    hiring.NewService(store, store, store, events, policy),
		events: events,
	}
}

// apply submits an application from the default candidate to jobID.
func (e *env) apply(t *testing.T, jobID string) *hiring.Application {
	t.Helper()
	app, err := e.svc.CreateApplication(e.ctx, candidate, hiring.CreateInput{JobID: jobID, CoverLetter: "Hello"})
	if err != nil {
		t.Fatalf("CreateApplication(%s): %v", jobID, err)
	}
	return app
}

func (e *env) addCandidate(id, name string) hiring.Actor {
	e.store.PutUser(hiring.User{ID: id, Name: name, Role: hiring.RoleCandidate})
	return hiring.Actor{UserID: id, Role: hiring.RoleCandidate}
}

func (e *env) count(t *testing.T, jobID string) int {
	t.Helper()
	job, err := e.store.GetJob(e.ctx, jobID)
	if err != nil {
		t.Fatalf("GetJob(%s): %v", jobID, err)
	}
	return job.ApplicationsCount
}

func (e *env) reload(t *testing.T, id string) *hiring.Application {
	t.Helper()
	app, err := e.store.Get(e.ctx, id)
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	return app
}

func wantValidation(t *testing.T, err error) {
	t.Helper()
	var ve *hiring.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func wantIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("err = %v, want %v", err, target)
	}
}
