package seed_test

import (
	"context"
	"strings"
	"testing"

	"jobmate/hiring-service/internal/hiring"
	"jobmate/hiring-service/internal/memstore"
	"jobmate/hiring-service/internal/seed"
)

const fixture = `
users:
  - id: emp-1
    name: Erin Employer
    role: employer
  - id: cand-1
    name: Cody Candidate
    email: cody@example.com
    linkedIn: https://linkedin.com/in/cody
    role: candidate
jobs:
  - id: job-1
    employerId: emp-1
    title: Backend Engineer
    company: Acme
`

func TestDecodeAndApply(t *testing.T) {
	f, err := seed.Decode(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	store := memstore.New()
	if err := f.Apply(context.Background(), store); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	u, err := store.GetUser(context.Background(), "cand-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.LinkedIn != "https://linkedin.com/in/cody" || u.Role != hiring.RoleCandidate {
		t.Errorf("user = %+v", u)
	}
	j, err := store.GetJob(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if j.EmployerID != "emp-1" || j.Company != "Acme" {
		t.Errorf("job = %+v", j)
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown role":     "users:\n  - id: u\n    role: recruiter\n",
		"missing user id":  "users:\n  - name: x\n    role: admin\n",
		"orphan job":       "jobs:\n  - id: j\n    employerId: ghost\n",
		"unknown field":    "users:\n  - id: u\n    role: admin\n    age: 3\n",
		"not yaml mapping": "- just\n- a list\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := seed.Decode(strings.NewReader(doc)); err == nil {
				t.Errorf("Decode accepted %q", doc)
			}
		})
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	f, err := seed.Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(f.Users) != 0 || len(f.Jobs) != 0 {
		t.Errorf("fixture = %+v, want empty", f)
	}
}
