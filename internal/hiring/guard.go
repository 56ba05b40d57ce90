package hiring

import "fmt"

// Role is the caller's role as asserted by the gateway.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// ParseRole converts a raw string to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleCandidate, RoleEmployer, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Actor identifies the user performing an operation.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor has administrative privilege.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanManage reports whether the actor may mutate applications for job: the
// employer who owns the job, or an admin.
func CanManage(a Actor, job *Job) bool {
	if a.UserID == "" {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	return job != nil && job.EmployerID == a.UserID
}

// CanRead reports whether the actor may read app. In addition to managers,
// the applicant may read their own application.
func CanRead(a Actor, job *Job, app *Application) bool {
	if CanManage(a, job) {
		return true
	}
	return a.UserID != "" && app != nil && app.ApplicantID == a.UserID
}

// CanDelete reports whether the actor may delete app: a manager, or the
// applicant withdrawing their own application.
func CanDelete(a Actor, job *Job, app *Application) bool {
	return CanRead(a, job, app)
}
