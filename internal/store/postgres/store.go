// Package postgres implements the hiring store and the job/user directories
// on PostgreSQL via pgx.
//
// Notes, interview rounds and feedback live in jsonb arrays on the
// applications row. Every append is a single UPDATE using jsonb `||` (and
// jsonb_set for nested arrays), so concurrent appends from different
// employers never overwrite each other.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/hiring-service/internal/hiring"
)

// Store is the PostgreSQL-backed hiring store.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store using pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var (
	_ hiring.Store         = (*Store)(nil)
	_ hiring.JobDirectory  = (*Store)(nil)
	_ hiring.UserDirectory = (*Store)(nil)
)

// appColumns is the select list matching scanApplication. Every query
// aliases applications as a.
const appColumns = `
	a.id::text, a.job_id::text, a.applicant_id::text, a.cover_letter, a.resume, a.applicant_info,
	a.status, a.hiring_stage, a.score,
	a.ai_qualification_score, a.ai_matched_skills, a.ai_missing_skills, a.ai_strengths,
	a.ai_assessment_summary, a.ai_cover_letter, a.resume_parsed_data,
	a.notes, a.assigned_to, a.interviews,
	a.applied_at, a.created_at, a.updated_at`

func scanApplication(row pgx.Row) (*hiring.Application, error) {
	var (
		a             hiring.Application
		status, stage string
		notes         []hiring.Note
		team          []hiring.TeamMember
		rounds        []hiring.Interview
	)
	err := row.Scan(
		&a.ID, &a.JobID, &a.ApplicantID, &a.CoverLetter, &a.Resume, &a.ApplicantInfo,
		&status, &stage, &a.Score,
		&a.QualificationScore, &a.MatchedSkills, &a.MissingSkills, &a.Strengths,
		&a.Summary, &a.Assessment.CoverLetter, &a.ParsedResume,
		&notes, &team, &rounds,
		&a.AppliedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = hiring.Status(status)
	a.HiringStage = hiring.HiringStage(stage)
	a.Notes = nonNil(notes)
	a.AssignedTo = nonNil(team)
	a.Interviews = nonNil(rounds)
	for i := range a.Notes {
		a.Notes[i].Replies = nonNil(a.Notes[i].Replies)
	}
	for i := range a.Interviews {
		a.Interviews[i].Feedback = nonNil(a.Interviews[i].Feedback)
		a.Interviews[i].Interviewers = nonNil(a.Interviews[i].Interviewers)
	}
	return &a, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// validID reports whether id can be compared to a uuid column. Malformed ids
// are treated as unknown rather than sent to PostgreSQL.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// jsonArg marshals v for a ::jsonb parameter.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal jsonb: %w", err)
	}
	return string(b), nil
}

// jsonArray marshals v as a one-element array, ready for jsonb `||`.
func jsonArray(v any) (string, error) {
	return jsonArg([]any{v})
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// ─── Reads ───────────────────────────────────────────────────────────────────

func (s *Store) Get(ctx context.Context, id string) (*hiring.Application, error) {
	if !validID(id) {
		return nil, hiring.NotFound("application")
	}
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM applications a WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, hiring.NotFound("application")
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *Store) CountByJob(ctx context.Context, jobID string) (int, error) {
	if !validID(jobID) {
		return 0, nil
	}
	var n int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications WHERE job_id = $1`, jobID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func (s *Store) List(ctx context.Context, q hiring.ListQuery) ([]hiring.Application, int, error) {
	where, args := buildWhere(q)

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications a`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("list applications count: %w", err)
	}

	sql, args := buildPageSQL(where, args, q)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications query: %w", err)
	}
	defer rows.Close()

	apps := make([]hiring.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list applications scan: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list applications rows: %w", err)
	}
	return apps, total, nil
}
