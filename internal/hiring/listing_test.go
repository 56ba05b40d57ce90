package hiring_test

import (
	"fmt"
	"math"
	"testing"

	"jobmate/hiring-service/internal/hiring"
)

// seedPipeline creates n applications to "job" with scores 0.5, 1.0, ...
// and returns their ids in score order.
func seedPipeline(t *testing.T, e *env, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		a := e.addCandidate(fmt.Sprintf("c%02d", i), fmt.Sprintf("Applicant %02d", i))
		app, err := e.svc.CreateApplication(e.ctx, a, hiring.CreateInput{JobID: "job"})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.svc.UpdateScore(e.ctx, employer, app.ID, float64(i+1)*0.5); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, app.ID)
	}
	return ids
}

func TestListApplicationsByJob_SortAndPaging(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	ids := seedPipeline(t, e, 7)

	page, err := e.svc.ListApplicationsByJob(e.ctx, employer, "job", hiring.ListOptions{SortBy: "score", SortOrder: "desc", Limit: 3, Page: 2})
	if err != nil {
		t.Fatalf("ListApplicationsByJob: %v", err)
	}
	if page.Total != 7 || page.Pages != 3 || page.Page != 2 || page.Count != 3 {
		t.Errorf("page meta = total %d pages %d page %d count %d", page.Total, page.Pages, page.Page, page.Count)
	}
	// Descending by score, page 2 holds the 4th..6th highest.
	for i, want := range []string{ids[3], ids[2], ids[1]} {
		if page.Data[i].ID != want {
			t.Errorf("Data[%d] = %s (score %v), want %s", i, page.Data[i].ID, page.Data[i].Score, want)
		}
	}

	page, err = e.svc.ListApplicationsByJob(e.ctx, employer, "job", hiring.ListOptions{SortBy: "score", SortOrder: "asc", Limit: 3, Page: 3})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 1 || page.Data[0].ID != ids[6] {
		t.Errorf("last ascending page = %+v", page.Data)
	}

	page, err = e.svc.ListApplicationsByJob(e.ctx, employer, "job", hiring.ListOptions{Page: 9})
	if err != nil {
		t.Fatal(err)
	}
	if page.Count != 0 || page.Data == nil || page.Total != 7 {
		t.Errorf("page past the end = count %d total %d data %#v", page.Count, page.Total, page.Data)
	}
}

func TestListApplicationsByJob_Filters(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	ids := seedPipeline(t, e, 4)
	if _, err := e.svc.UpdateStatus(e.ctx, employer, ids[0], hiring.StatusChange{Status: "Shortlisted"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.UpdateStatus(e.ctx, employer, ids[1], hiring.StatusChange{Status: "Shortlisted", HiringStage: "Shortlisted"}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		opts hiring.ListOptions
		want int
	}{
		{"all", hiring.ListOptions{}, 4},
		{"status", hiring.ListOptions{Status: "Shortlisted"}, 2},
		{"status and stage", hiring.ListOptions{Status: "Shortlisted", HiringStage: "Shortlisted"}, 1},
		{"search is case-insensitive", hiring.ListOptions{Search: "applicant 03"}, 1},
		{"search prefix", hiring.ListOptions{Search: "APPL"}, 4},
		{"no match", hiring.ListOptions{Search: "nobody"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := e.svc.ListApplicationsByJob(e.ctx, employer, "job", tc.opts)
			if err != nil {
				t.Fatalf("ListApplicationsByJob: %v", err)
			}
			if page.Total != tc.want {
				t.Errorf("Total = %d, want %d", page.Total, tc.want)
			}
		})
	}
}

func TestListApplicationsByJob_Rejects(t *testing.T) {
	e := newEnv(t, hiring.Policy{})

	for name, opts := range map[string]hiring.ListOptions{
		"status":                {Status: "Maybe"},
		"stage":                 {HiringStage: "Phone Screen"},
		"sort field":            {SortBy: "name"},
		"sort order":            {SortOrder: "sideways"},
		"page":                  {Page: -1},
		"limit":                 {Limit: hiring.MaxPageSize + 1},
		"page offset overflows": {Page: math.MaxInt/50 + 1, Limit: 100},
		"largest page":          {Page: math.MaxInt},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.svc.ListApplicationsByJob(e.ctx, employer, "job", opts)
			wantValidation(t, err)
		})
	}

	_, err := e.svc.ListApplicationsByJob(e.ctx, outsider, "job", hiring.ListOptions{})
	wantIs(t, err, hiring.ErrForbidden)
	_, err = e.svc.ListApplicationsByJob(e.ctx, candidate, "job", hiring.ListOptions{})
	wantIs(t, err, hiring.ErrForbidden)
	_, err = e.svc.ListApplicationsByJob(e.ctx, employer, "ghost", hiring.ListOptions{})
	wantIs(t, err, hiring.ErrNotFound)
}

func TestListApplicationsByApplicant(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	e.apply(t, "job")
	e.apply(t, "job-x")

	apps, err := e.svc.ListApplicationsByApplicant(e.ctx, candidate, "")
	if err != nil {
		t.Fatalf("ListApplicationsByApplicant: %v", err)
	}
	if len(apps) != 2 {
		t.Errorf("len = %d, want 2", len(apps))
	}

	if _, err := e.svc.ListApplicationsByApplicant(e.ctx, admin, "cand"); err != nil {
		t.Errorf("admin listing: %v", err)
	}
	_, err = e.svc.ListApplicationsByApplicant(e.ctx, employer, "cand")
	wantIs(t, err, hiring.ErrForbidden)
	_, err = e.svc.ListApplicationsByApplicant(e.ctx, hiring.Actor{}, "")
	wantIs(t, err, hiring.ErrForbidden)
}

func TestListEmployerPipeline_SpansOwnedJobs(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	e.apply(t, "job")
	e.apply(t, "job-2")
	e.apply(t, "job-x")

	page, err := e.svc.ListEmployerPipeline(e.ctx, employer, "", hiring.ListOptions{})
	if err != nil {
		t.Fatalf("ListEmployerPipeline: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Total = %d, want 2", page.Total)
	}
	for _, a := range page.Data {
		if a.JobID == "job-x" {
			t.Error("pipeline includes another employer's job")
		}
	}

	page, err = e.svc.ListEmployerPipeline(e.ctx, admin, "emp-x", hiring.ListOptions{})
	if err != nil {
		t.Fatalf("admin ListEmployerPipeline: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("admin view Total = %d, want 1", page.Total)
	}

	_, err = e.svc.ListEmployerPipeline(e.ctx, employer, "emp-x", hiring.ListOptions{})
	wantIs(t, err, hiring.ErrForbidden)

	// An employer without jobs gets an empty page, not everything.
	page, err = e.svc.ListEmployerPipeline(e.ctx, colleague, "", hiring.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 || page.Pages != 0 {
		t.Errorf("empty pipeline = total %d pages %d", page.Total, page.Pages)
	}
}

// The last page whose offset still fits in an int is accepted and empty.
func TestListApplicationsByJob_HugePageIsEmpty(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	e.apply(t, "job")

	page, err := e.svc.ListApplicationsByJob(e.ctx, employer, "job", hiring.ListOptions{Page: (math.MaxInt-1)/100 + 1, Limit: 100})
	if err != nil {
		t.Fatalf("ListApplicationsByJob: %v", err)
	}
	if page.Count != 0 || page.Total != 1 {
		t.Errorf("count %d total %d, want 0/1", page.Count, page.Total)
	}
}

func TestListings_AttachJobSummary(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	e.store.PutJob(hiring.Job{ID: "job", EmployerID: "emp", Title: "Backend Engineer", Company: "Acme"})
	e.store.PutJob(hiring.Job{ID: "job-2", EmployerID: "emp", Title: "SRE", Company: "Acme"})
	e.apply(t, "job")
	e.apply(t, "job-2")

	want := map[string]hiring.JobSummary{
		"job":   {ID: "job", Title: "Backend Engineer", Company: "Acme"},
		"job-2": {ID: "job-2", Title: "SRE", Company: "Acme"},
	}
	check := func(t *testing.T, apps []hiring.Application) {
		t.Helper()
		if len(apps) != 2 {
			t.Fatalf("len = %d, want 2", len(apps))
		}
		for _, a := range apps {
			if a.JobInfo == nil || *a.JobInfo != want[a.JobID] {
				t.Errorf("application for %s: JobInfo = %+v, want %+v", a.JobID, a.JobInfo, want[a.JobID])
			}
		}
	}

	page, err := e.svc.ListEmployerPipeline(e.ctx, employer, "", hiring.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	check(t, page.Data)

	apps, err := e.svc.ListApplicationsByApplicant(e.ctx, candidate, "")
	if err != nil {
		t.Fatal(err)
	}
	check(t, apps)

	// Listing results are decorated copies; the stored record is not.
	if got := e.reload(t, apps[0].ID).JobInfo; got != nil {
		t.Errorf("stored JobInfo = %+v, want nil", got)
	}
}

func TestListApplicationsByApplicant_MissingJobLeavesNilSummary(t *testing.T) {
	e := newEnv(t, hiring.Policy{})
	app, err := e.svc.CreateApplication(e.ctx, candidate, hiring.CreateInput{JobID: "job"})
	if err != nil {
		t.Fatal(err)
	}
	e.store.RemoveJob("job")

	apps, err := e.svc.ListApplicationsByApplicant(e.ctx, candidate, "")
	if err != nil {
		t.Fatalf("ListApplicationsByApplicant: %v", err)
	}
	if len(apps) != 1 || apps[0].ID != app.ID || apps[0].JobInfo != nil {
		t.Errorf("apps = %+v, want the application without JobInfo", apps)
	}
}
