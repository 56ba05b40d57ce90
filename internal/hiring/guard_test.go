package hiring_test

import (
	"testing"

	"jobmate/hiring-service/internal/hiring"
)

func TestGuard(t *testing.T) {
	job := &hiring.Job{ID: "job", EmployerID: "emp"}
	app := &hiring.Application{ID: "app", JobID: "job", ApplicantID: "cand"}

	cases := []struct {
		name                   string
		actor                  hiring.Actor
		job                    *hiring.Job
		manage, read, deleteOK bool
	}{
		{"owning employer", hiring.Actor{UserID: "emp", Role: hiring.RoleEmployer}, job, true, true, true},
		{"other employer", hiring.Actor{UserID: "emp2", Role: hiring.RoleEmployer}, job, false, false, false},
		{"admin", hiring.Actor{UserID: "root", Role: hiring.RoleAdmin}, job, true, true, true},
		{"admin, job gone", hiring.Actor{UserID: "root", Role: hiring.RoleAdmin}, nil, true, true, true},
		{"applicant", hiring.Actor{UserID: "cand", Role: hiring.RoleCandidate}, job, false, true, true},
		{"applicant, job gone", hiring.Actor{UserID: "cand", Role: hiring.RoleCandidate}, nil, false, true, true},
		{"other candidate", hiring.Actor{UserID: "x", Role: hiring.RoleCandidate}, job, false, false, false},
		{"anonymous", hiring.Actor{}, job, false, false, false},
		{"anonymous admin role", hiring.Actor{Role: hiring.RoleAdmin}, job, false, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := hiring.CanManage(c.actor, c.job); got != c.manage {
				t.Errorf("CanManage = %v, want %v", got, c.manage)
			}
			if got := hiring.CanRead(c.actor, c.job, app); got != c.read {
				t.Errorf("CanRead = %v, want %v", got, c.read)
			}
			if got := hiring.CanDelete(c.actor, c.job, app); got != c.deleteOK {
				t.Errorf("CanDelete = %v, want %v", got, c.deleteOK)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range []string{"candidate", "employer", "admin"} {
		if _, err := hiring.ParseRole(r); err != nil {
			t.Errorf("ParseRole(%q): %v", r, err)
		}
	}
	if _, err := hiring.ParseRole("Admin"); err == nil {
		t.Error("ParseRole is case-sensitive")
	}
}
