// Package seed loads user and job fixtures from YAML. Users and jobs are
// owned by other services; fixtures stand in for them in local setups.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"jobmate/hiring-service/internal/hiring"
)

// Fixture is the YAML document layout.
type Fixture struct {
	Users []User `yaml:"users"`
	Jobs  []Job  `yaml:"jobs"`
}

type User struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	LinkedIn string `yaml:"linkedIn"`
	Avatar   string `yaml:"avatar"`
	Role     string `yaml:"role"`
}

type Job struct {
	ID         string `yaml:"id"`
	EmployerID string `yaml:"employerId"`
	Title      string `yaml:"title"`
	Company    string `yaml:"company"`
}

// Sink receives fixture records.
type Sink interface {
	UpsertUser(ctx context.Context, u hiring.User) error
	UpsertJob(ctx context.Context, j hiring.Job) error
}

// Decode parses and validates a fixture.
func Decode(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	users := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("users[%d]: id is required", i)
		}
		if _, err := hiring.ParseRole(u.Role); err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		users[u.ID] = true
	}
	for i, j := range f.Jobs {
		if j.ID == "" {
			return nil, fmt.Errorf("jobs[%d]: id is required", i)
		}
		if !users[j.EmployerID] {
			return nil, fmt.Errorf("jobs[%d]: employer %q is not a fixture user", i, j.EmployerID)
		}
	}
	return &f, nil
}

// LoadFile reads the fixture at path.
func LoadFile(path string) (*Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh)
}

// Apply writes every user, then every job, to sink.
func (f *Fixture) Apply(ctx context.Context, sink Sink) error {
	for _, u := range f.Users {
		if err := sink.UpsertUser(ctx, hiring.User{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Phone:    u.Phone,
			LinkedIn: u.LinkedIn,
			Avatar:   u.Avatar,
			Role:     hiring.Role(u.Role),
		}); err != nil {
			return err
		}
	}
	for _, j := range f.Jobs {
		if err := sink.UpsertJob(ctx, hiring.Job{
			ID:         j.ID,
			EmployerID: j.EmployerID,
			Title:      j.Title,
			Company:    j.Company,
		}); err != nil {
			return err
		}
	}
	return nil
}
