package hiring

import (
	"context"
	"errors"
	"math"
	"strings"
)

// ListOptions are the raw filter, sort and paging parameters of a pipeline
// listing. Zero values select the defaults.
type ListOptions struct {
	Status      string
	HiringStage string
	Search      string
	SortBy      string
	SortOrder   string // "asc" or "desc"
	Page        int
	Limit       int
}

// Page is one page of a listing. Total counts every match.
type Page struct {
	Count int           `json:"count"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Data  []Application `json:"data"`
}

// ListApplicationsByApplicant returns the applicant's applications, newest
// first. Only the applicant themself or an admin may list them.
func (s *Service) ListApplicationsByApplicant(ctx context.Context, actor Actor, applicantID string) ([]Application, error) {
	if applicantID == "" {
		applicantID = actor.UserID
	}
	if actor.UserID == "" || (applicantID != actor.UserID && !actor.IsAdmin()) {
		return nil, ErrForbidden
	}
	apps, _, err := s.store.List(ctx, ListQuery{
		ApplicantID: applicantID,
		SortBy:      SortAppliedAt,
		Descending:  true,
	})
	if err != nil {
		return nil, err
	}
	if err := s.attachJobs(ctx, apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListApplicationsByJob returns a filtered page of one job's applications.
func (s *Service) ListApplicationsByJob(ctx context.Context, actor Actor, jobID string, opts ListOptions) (*Page, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !CanManage(actor, job) {
		return nil, ErrForbidden
	}
	return s.listPage(ctx, []string{jobID}, opts)
}

// ListEmployerPipeline returns a filtered page across every job owned by
// employerID. Employers may only list their own pipeline; admins any.
func (s *Service) ListEmployerPipeline(ctx context.Context, actor Actor, employerID string, opts ListOptions) (*Page, error) {
	if employerID == "" {
		employerID = actor.UserID
	}
	if actor.UserID == "" || (employerID != actor.UserID && !actor.IsAdmin()) {
		return nil, ErrForbidden
	}
	jobIDs, err := s.jobs.ListJobIDsByEmployer(ctx, employerID)
	if err != nil {
		return nil, err
	}
	return s.listPage(ctx, jobIDs, opts)
}

func (s *Service) listPage(ctx context.Context, jobIDs []string, opts ListOptions) (*Page, error) {
	q, page, err := buildQuery(opts)
	if err != nil {
		return nil, err
	}
	q.JobIDs = jobIDs
	q.JobScoped = true

	apps, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []Application{}
	}
	if err := s.attachJobs(ctx, apps); err != nil {
		return nil, err
	}
	pages := (total + q.Limit - 1) / q.Limit
	return &Page{Count: len(apps), Total: total, Page: page, Pages: pages, Data: apps}, nil
}

// attachJobs sets JobInfo on every application, looking each job up once.
// Applications whose job has disappeared keep a nil JobInfo.
func (s *Service) attachJobs(ctx context.Context, apps []Application) error {
	jobs := make(map[string]*JobSummary)
	for i := range apps {
		id := apps[i].JobID
		summary, seen := jobs[id]
		if !seen {
			job, err := s.jobs.GetJob(ctx, id)
			switch {
			case errors.Is(err, ErrNotFound):
			case err != nil:
				return err
			default:
				summary = job.Summary()
			}
			jobs[id] = summary
		}
		apps[i].JobInfo = summary
	}
	return nil
}

func buildQuery(opts ListOptions) (ListQuery, int, error) {
	var q ListQuery
	if opts.Status != "" {
		st, err := ParseStatus(opts.Status)
		if err != nil {
			return q, 0, &ValidationError{Msg: err.Error()}
		}
		q.Status = st
	}
	if opts.HiringStage != "" {
		stage, err := ParseHiringStage(opts.HiringStage)
		if err != nil {
			return q, 0, &ValidationError{Msg: err.Error()}
		}
		q.HiringStage = stage
	}
	q.Search = strings.TrimSpace(opts.Search)

	switch SortField(opts.SortBy) {
	case "":
		q.SortBy = SortCreatedAt
	case SortCreatedAt, SortAppliedAt, SortUpdatedAt, SortScore:
		q.SortBy = SortField(opts.SortBy)
	default:
		return q, 0, invalid("cannot sort by %q", opts.SortBy)
	}
	switch strings.ToLower(opts.SortOrder) {
	case "", "desc":
		q.Descending = true
	case "asc":
	default:
		return q, 0, invalid("sortOrder must be asc or desc")
	}

	page := opts.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return q, 0, invalid("page must be at least 1")
	}
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 1 || limit > MaxPageSize {
		return q, 0, invalid("limit must be between 1 and %d", MaxPageSize)
	}
	if page-1 > (math.MaxInt-1)/limit {
		return q, 0, invalid("page %d is out of range", page)
	}
	q.Limit = limit
	q.Offset = (page - 1) * limit
	return q, page, nil
}
