// Package memstore is an in-process implementation of the hiring store and
// directories. Every operation runs under one mutex, which gives the same
// atomic-append and uniqueness guarantees as the PostgreSQL store. It backs
// STORE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobmate/hiring-service/internal/hiring"
)

// Store holds applications, jobs and users in memory.
type Store struct {
	mu     sync.Mutex
	apps   map[string]*hiring.Application
	byPair map[string]string // job|applicant → application id
	jobs   map[string]*hiring.Job
	users  map[string]*hiring.User
	now    func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		apps:   make(map[string]*hiring.Application),
		byPair: make(map[string]string),
		jobs:   make(map[string]*hiring.Job),
		users:  make(map[string]*hiring.User),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var (
	_ hiring.Store         = (*Store)(nil)
	_ hiring.JobDirectory  = (*Store)(nil)
	_ hiring.UserDirectory = (*Store)(nil)
)

func pairKey(jobID, applicantID string) string { return jobID + "|" + applicantID }

// ─── Directories ─────────────────────────────────────────────────────────────

// PutUser inserts or replaces a user.
func (s *Store) PutUser(u hiring.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

// PutJob inserts or replaces a job. The stored count is kept when the job
// already exists.
func (s *Store) PutJob(j hiring.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.jobs[j.ID]; ok {
		j.ApplicationsCount = old.ApplicationsCount
	}
	s.jobs[j.ID] = &j
}

// RemoveJob deletes a job from the directory. Its applications are kept,
// as when the job service removes a posting.
func (s *Store) RemoveJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *Store) GetJob(_ context.Context, id string) (*hiring.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, hiring.NotFound("job")
	}
	cp := *j
	return &cp, nil
}

func (s *Store) ListJobIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ListJobIDsByEmployer(_ context.Context, employerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for id, j := range s.jobs {
		if j.EmployerID == employerID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) SetApplicationsCount(_ context.Context, jobID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return hiring.NotFound("job")
	}
	j.ApplicationsCount = count
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*hiring.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, hiring.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUsers(_ context.Context, ids []string) ([]hiring.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hiring.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// ─── Applications ────────────────────────────────────────────────────────────

func (s *Store) Insert(_ context.Context, app *hiring.Application) (*hiring.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(app.JobID, app.ApplicantID)
	if _, exists := s.byPair[key]; exists {
		return nil, hiring.ErrConflict
	}
	a := clone(app)
	a.ID = uuid.NewString()
	now := s.now()
	if a.AppliedAt.IsZero() {
		a.AppliedAt = now
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	s.apps[a.ID] = a
	s.byPair[key] = a.ID
	return clone(a), nil
}

func (s *Store) Get(_ context.Context, id string) (*hiring.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, hiring.NotFound("application")
	}
	return clone(a), nil
}

func (s *Store) Delete(_ context.Context, id string) (*hiring.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, hiring.NotFound("application")
	}
	delete(s.apps, id)
	delete(s.byPair, pairKey(a.JobID, a.ApplicantID))
	return a, nil
}

func (s *Store) CountByJob(_ context.Context, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.apps {
		if a.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func (s *Store) List(_ context.Context, q hiring.ListQuery) ([]hiring.Application, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var jobs map[string]bool
	if q.JobScoped {
		jobs = make(map[string]bool, len(q.JobIDs))
		for _, id := range q.JobIDs {
			jobs[id] = true
		}
	}
	search := strings.ToLower(q.Search)

	matched := make([]*hiring.Application, 0)
	for _, a := range s.apps {
		switch {
		case jobs != nil && !jobs[a.JobID],
			q.ApplicantID != "" && a.ApplicantID != q.ApplicantID,
			q.Status != "" && a.Status != q.Status,
			q.HiringStage != "" && a.HiringStage != q.HiringStage,
			search != "" && !strings.Contains(strings.ToLower(a.ApplicantInfo.Name), search):
			continue
		}
		matched = append(matched, a)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := compare(a, b, q.SortBy)
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if q.Descending {
			return c > 0
		}
		return c < 0
	})

	total := len(matched)
	if q.Offset >= total {
		return []hiring.Application{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	out := make([]hiring.Application, 0, end-q.Offset)
	for _, a := range matched[q.Offset:end] {
		out = append(out, *clone(a))
	}
	return out, total, nil
}

func compare(a, b *hiring.Application, field hiring.SortField) int {
	switch field {
	case hiring.SortScore:
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	case hiring.SortAppliedAt:
		return a.AppliedAt.Compare(b.AppliedAt)
	case hiring.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// mutate runs fn on the stored application under the lock. The update is
// kept only when fn succeeds.
func (s *Store) mutate(id string, fn func(a *hiring.Application) error) (*hiring.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.apps[id]
	if !ok {
		return nil, hiring.NotFound("application")
	}
	next := clone(cur)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	s.apps[id] = next
	return clone(next), nil
}

func (s *Store) UpdateFields(_ context.Context, id string, u hiring.FieldUpdate) (*hiring.Application, error) {
	return s.mutate(id, func(a *hiring.Application) error {
		if u.Status != nil {
			a.Status = *u.Status
		}
		if u.HiringStage != nil {
			a.HiringStage = *u.HiringStage
		}
		if u.Score != nil {
			a.Score = *u.Score
		}
		if u.AssignedTo != nil {
			a.AssignedTo = append([]hiring.TeamMember{}, (*u.AssignedTo)...)
		}
		return nil
	})
}

func (s *Store) SetAssessment(_ context.Context, id string, as hiring.Assessment) (*hiring.Application, error) {
	return s.mutate(id, func(a *hiring.Application) error {
		a.Assessment = cloneAssessment(as)
		return nil
	})
}

func (s *Store) AppendNote(_ context.Context, id string, n hiring.Note) (*hiring.Application, error) {
	return s.mutate(id, func(a *hiring.Application) error {
		a.Notes = append(a.Notes, n)
		return nil
	})
}

func (s *Store) AppendReply(_ context.Context, id, noteID string, r hiring.Reply) (*hiring.Application, error) {
	return s.mutate(id, func(a *hiring.Application) error {
		n := a.Note(noteID)
		if n == nil {
			return hiring.NotFound("parent note")
		}
		n.Replies = append(n.Replies, r)
		return nil
	})
}

func (s *Store) AppendInterview(_ context.Context, id string, iv hiring.Interview, eff hiring.ScheduleEffects) (*hiring.Application, error) {
	return s.mutate(id, func(a *hiring.Application) error {
		a.Interviews = append(a.Interviews, iv)
		a.HiringStage = eff.HiringStage
		if eff.Status != nil {
			a.Status = *eff.Status
		}
		return nil
	})
}

func (s *Store) UpdateInterview(_ context.Context, id, interviewID string, p hiring.InterviewPatch) (*hiring.Application, error) {
	return s.mutate(id, func(a *hiring.Application) error {
		iv := a.Interview(interviewID)
		if iv == nil {
			return hiring.NotFound("interview")
		}
		if p.Status != nil && !hiring.IsRoundTransitionAllowed(iv.Status, *p.Status) {
			return &hiring.ValidationError{Msg: fmt.Sprintf("interview is %s and cannot move to %s", iv.Status, *p.Status)}
		}
		p.Apply(iv)
		return nil
	})
}

func (s *Store) AppendFeedback(_ context.Context, id, interviewID string, f hiring.Feedback) (*hiring.Application, error) {
	return s.mutate(id, func(a *hiring.Application) error {
		iv := a.Interview(interviewID)
		if iv == nil {
			return hiring.NotFound("interview")
		}
		next, err := hiring.RoundStatusAfterFeedback(iv.Status)
		if err != nil {
			return err
		}
		iv.Feedback = append(iv.Feedback, f)
		iv.Status = next
		return nil
	})
}

// ─── Copying ─────────────────────────────────────────────────────────────────

// clone deep-copies a so callers never share slices with the store.
func clone(a *hiring.Application) *hiring.Application {
	cp := *a
	if a.Resume != nil {
		r := *a.Resume
		cp.Resume = &r
	}
	cp.Assessment = cloneAssessment(a.Assessment)
	cp.Notes = make([]hiring.Note, len(a.Notes))
	for i, n := range a.Notes {
		n.Replies = append([]hiring.Reply{}, n.Replies...)
		cp.Notes[i] = n
	}
	cp.AssignedTo = append([]hiring.TeamMember{}, a.AssignedTo...)
	cp.Interviews = make([]hiring.Interview, len(a.Interviews))
	for i, iv := range a.Interviews {
		iv.Interviewers = append([]string{}, iv.Interviewers...)
		iv.Feedback = append([]hiring.Feedback{}, iv.Feedback...)
		cp.Interviews[i] = iv
	}
	return &cp
}

func cloneAssessment(a hiring.Assessment) hiring.Assessment {
	cp := a
	if a.QualificationScore != nil {
		v := *a.QualificationScore
		cp.QualificationScore = &v
	}
	if a.Summary != nil {
		v := *a.Summary
		cp.Summary = &v
	}
	if a.CoverLetter != nil {
		v := *a.CoverLetter
		cp.CoverLetter = &v
	}
	cp.MatchedSkills = append([]string{}, a.MatchedSkills...)
	cp.MissingSkills = append([]string{}, a.MissingSkills...)
	cp.Strengths = append([]string{}, a.Strengths...)
	if a.ParsedResume != nil {
		cp.ParsedResume = append(json.RawMessage{}, a.ParsedResume...)
	}
	return cp
}

// UpsertUser is PutUser for fixture loading.
func (s *Store) UpsertUser(_ context.Context, u hiring.User) error {
	s.PutUser(u)
	return nil
}

// UpsertJob is PutJob for fixture loading.
func (s *Store) UpsertJob(_ context.Context, j hiring.Job) error {
	s.PutJob(j)
	return nil
}
