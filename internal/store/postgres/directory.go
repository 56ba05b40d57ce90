package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobmate/hiring-service/internal/hiring"
)

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (s *Store) GetJob(ctx context.Context, id string) (*hiring.Job, error) {
	if !validID(id) {
		return nil, hiring.NotFound("job")
	}
	var j hiring.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, employer_id::text, title, company, applications_count
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.EmployerID, &j.Title, &j.Company, &j.ApplicationsCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, hiring.NotFound("job")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (s *Store) ListJobIDs(ctx context.Context) ([]string, error) {
	return s.collectIDs(ctx, `SELECT id::text FROM jobs ORDER BY created_at`)
}

func (s *Store) ListJobIDsByEmployer(ctx context.Context, employerID string) ([]string, error) {
	if !validID(employerID) {
		return []string{}, nil
	}
	return s.collectIDs(ctx,
		`SELECT id::text FROM jobs WHERE employer_id = $1 ORDER BY created_at`, employerID)
}

func (s *Store) collectIDs(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list job ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list job ids: %w", err)
	}
	return nonNil(ids), nil
}

func (s *Store) SetApplicationsCount(ctx context.Context, jobID string, count int) error {
	if !validID(jobID) {
		return hiring.NotFound("job")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET applications_count = $2 WHERE id = $1`, jobID, count)
	if err != nil {
		return fmt.Errorf("set applications count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return hiring.NotFound("job")
	}
	return nil
}

// UpsertJob creates or overwrites a job. The stored applications count is
// left untouched on update.
func (s *Store) UpsertJob(ctx context.Context, j hiring.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, employer_id, title, company)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET employer_id = EXCLUDED.employer_id,
		     title       = EXCLUDED.title,
		     company     = EXCLUDED.company`,
		j.ID, j.EmployerID, j.Title, j.Company,
	)
	if err != nil {
		return fmt.Errorf("upsert job %s: %w", j.ID, err)
	}
	return nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

const userColumns = `id::text, name, email, phone, linkedin, avatar, role`

func scanUser(row pgx.Row) (*hiring.User, error) {
	var (
		u    hiring.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.LinkedIn, &u.Avatar, &role); err != nil {
		return nil, err
	}
	u.Role = hiring.Role(role)
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*hiring.User, error) {
	if !validID(id) {
		return nil, hiring.NotFound("user")
	}
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, hiring.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) ([]hiring.User, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []hiring.User{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]hiring.User, len(valid))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("get users scan: %w", err)
		}
		byID[u.ID] = *u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get users rows: %w", err)
	}

	out := make([]hiring.User, 0, len(byID))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// UpsertUser creates or overwrites a user profile.
func (s *Store) UpsertUser(ctx context.Context, u hiring.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, phone, linkedin, avatar, role)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET name     = EXCLUDED.name,
		     email    = EXCLUDED.email,
		     phone    = EXCLUDED.phone,
		     linkedin = EXCLUDED.linkedin,
		     avatar   = EXCLUDED.avatar,
		     role     = EXCLUDED.role`,
		u.ID, u.Name, u.Email, u.Phone, u.LinkedIn, u.Avatar, string(u.Role),
	)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}
