package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobmate/hiring-service/internal/hiring"
)

// ─── Lifecycle ───────────────────────────────────────────────────────────────

// Insert relies on the (job_id, applicant_id) unique constraint, so two
// concurrent submissions for the same pair yield one row and one conflict.
func (s *Store) Insert(ctx context.Context, app *hiring.Application) (*hiring.Application, error) {
	if !validID(app.JobID) {
		return nil, hiring.NotFound("job")
	}
	if !validID(app.ApplicantID) {
		return nil, hiring.NotFound("user")
	}
	var resume *string
	if app.Resume != nil {
		r, err := jsonArg(app.Resume)
		if err != nil {
			return nil, err
		}
		resume = &r
	}
	info, err := jsonArg(app.ApplicantInfo)
	if err != nil {
		return nil, err
	}

	created, err := scanApplication(s.pool.QueryRow(ctx,
		`INSERT INTO applications AS a
		   (job_id, applicant_id, cover_letter, resume, applicant_info, status, hiring_stage, applied_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7, $8)
		 ON CONFLICT (job_id, applicant_id) DO NOTHING
		 RETURNING `+appColumns,
		app.JobID, app.ApplicantID, app.CoverLetter, resume, info,
		string(app.Status), string(app.HiringStage), app.AppliedAt,
	))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, hiring.ErrConflict
	case isForeignKeyViolation(err):
		return nil, hiring.NotFound("job")
	case err != nil:
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return created, nil
}

func (s *Store) Delete(ctx context.Context, id string) (*hiring.Application, error) {
	if !validID(id) {
		return nil, hiring.NotFound("application")
	}
	app, err := scanApplication(s.pool.QueryRow(ctx,
		`DELETE FROM applications a WHERE a.id = $1 RETURNING `+appColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, hiring.NotFound("application")
	}
	if err != nil {
		return nil, fmt.Errorf("delete application: %w", err)
	}
	return app, nil
}

// ─── Scalar updates (last writer wins) ─────────────────────────────────────────

func (s *Store) UpdateFields(ctx context.Context, id string, u hiring.FieldUpdate) (*hiring.Application, error) {
	var status, stage, team *string
	if u.Status != nil {
		v := string(*u.Status)
		status = &v
	}
	if u.HiringStage != nil {
		v := string(*u.HiringStage)
		stage = &v
	}
	if u.AssignedTo != nil {
		v, err := jsonArg(*u.AssignedTo)
		if err != nil {
			return nil, err
		}
		team = &v
	}

	return s.update(ctx, "update application", id,
		`UPDATE applications a
		 SET status       = COALESCE($2::text, a.status),
		     hiring_stage = COALESCE($3::text, a.hiring_stage),
		     score        = COALESCE($4::double precision, a.score),
		     assigned_to  = COALESCE($5::jsonb, a.assigned_to),
		     updated_at   = NOW()
		 WHERE a.id = $1
		 RETURNING `+appColumns,
		id, status, stage, u.Score, team,
	)
}

func (s *Store) SetAssessment(ctx context.Context, id string, as hiring.Assessment) (*hiring.Application, error) {
	var parsed *string
	if len(as.ParsedResume) > 0 {
		v := string(as.ParsedResume)
		parsed = &v
	}
	return s.update(ctx, "set assessment", id,
		`UPDATE applications a
		 SET ai_qualification_score = $2,
		     ai_matched_skills      = $3,
		     ai_missing_skills      = $4,
		     ai_strengths           = $5,
		     ai_assessment_summary  = $6,
		     ai_cover_letter        = $7,
		     resume_parsed_data     = $8::jsonb,
		     updated_at             = NOW()
		 WHERE a.id = $1
		 RETURNING `+appColumns,
		id, as.QualificationScore, as.MatchedSkills, as.MissingSkills, as.Strengths,
		as.Summary, as.CoverLetter, parsed,
	)
}

// update runs a single-row UPDATE … RETURNING and maps a missing row to
// NotFound.
func (s *Store) update(ctx context.Context, op, id, sql string, args ...any) (*hiring.Application, error) {
	if !validID(id) {
		return nil, hiring.NotFound("application")
	}
	app, err := scanApplication(s.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, hiring.NotFound("application")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

// ─── Notes ───────────────────────────────────────────────────────────────────

func (s *Store) AppendNote(ctx context.Context, id string, n hiring.Note) (*hiring.Application, error) {
	entry, err := jsonArray(n)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, "append note", id,
		`UPDATE applications a
		 SET notes = a.notes || $2::jsonb, updated_at = NOW()
		 WHERE a.id = $1
		 RETURNING `+appColumns,
		id, entry,
	)
}

// noteIndex locates a note by id within one application. Notes are never
// removed, so the index stays valid for the rest of the statement.
const noteIndex = `
	WITH target AS (
	  SELECT (e.ord - 1)::int AS idx
	  FROM applications t, jsonb_array_elements(t.notes) WITH ORDINALITY AS e(elem, ord)
	  WHERE t.id = $1 AND e.elem->>'id' = $2
	)`

func (s *Store) AppendReply(ctx context.Context, id, noteID string, r hiring.Reply) (*hiring.Application, error) {
	if !validID(id) {
		return nil, hiring.NotFound("application")
	}
	entry, err := jsonArray(r)
	if err != nil {
		return nil, err
	}
	app, err := scanApplication(s.pool.QueryRow(ctx, noteIndex+`
		UPDATE applications a
		SET notes = jsonb_set(
		        a.notes,
		        ARRAY[target.idx::text, 'replies'],
		        COALESCE(a.notes->target.idx->'replies', '[]'::jsonb) || $3::jsonb),
		    updated_at = NOW()
		FROM target
		WHERE a.id = $1
		RETURNING `+appColumns,
		id, noteID, entry,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, hiring.NotFound("parent note")
	}
	if err != nil {
		return nil, fmt.Errorf("append reply: %w", err)
	}
	return app, nil
}

// ─── Interviews ──────────────────────────────────────────────────────────────

func (s *Store) AppendInterview(ctx context.Context, id string, iv hiring.Interview, eff hiring.ScheduleEffects) (*hiring.Application, error) {
	entry, err := jsonArray(iv)
	if err != nil {
		return nil, err
	}
	var status *string
	if eff.Status != nil {
		v := string(*eff.Status)
		status = &v
	}
	return s.update(ctx, "append interview", id,
		`UPDATE applications a
		 SET interviews   = a.interviews || $2::jsonb,
		     hiring_stage = $3,
		     status       = COALESCE($4::text, a.status),
		     updated_at   = NOW()
		 WHERE a.id = $1
		 RETURNING `+appColumns,
		id, entry, string(eff.HiringStage), status,
	)
}

const interviewIndex = `
	WITH target AS (
	  SELECT (e.ord - 1)::int AS idx
	  FROM applications t, jsonb_array_elements(t.interviews) WITH ORDINALITY AS e(elem, ord)
	  WHERE t.id = $1 AND e.elem->>'id' = $2
	)`

// patchDocument renders the supplied fields of p with the same keys as
// hiring.Interview, for a jsonb object merge.
func patchDocument(p hiring.InterviewPatch) map[string]any {
	doc := make(map[string]any)
	if p.ScheduledAt != nil {
		doc["scheduledAt"] = *p.ScheduledAt
	}
	if p.Duration != nil {
		doc["duration"] = *p.Duration
	}
	if p.Type != nil {
		doc["type"] = *p.Type
	}
	if p.Location != nil {
		doc["location"] = *p.Location
	}
	if p.Notes != nil {
		doc["notes"] = *p.Notes
	}
	if p.Status != nil {
		doc["status"] = *p.Status
	}
	if p.Interviewers != nil {
		doc["interviewers"] = *p.Interviewers
	}
	return doc
}

// UpdateInterview applies hiring.IsRoundTransitionAllowed in SQL: a status
// change out of hiring.TerminalRoundStatuses matches no row.
func (s *Store) UpdateInterview(ctx context.Context, id, interviewID string, p hiring.InterviewPatch) (*hiring.Application, error) {
	if !validID(id) {
		return nil, hiring.NotFound("application")
	}
	patch, err := jsonArg(patchDocument(p))
	if err != nil {
		return nil, err
	}
	var status *string
	if p.Status != nil {
		v := string(*p.Status)
		status = &v
	}

	app, err := scanApplication(s.pool.QueryRow(ctx, interviewIndex+`
		UPDATE applications a
		SET interviews = jsonb_set(a.interviews, ARRAY[target.idx::text], (a.interviews->target.idx) || $3::jsonb),
		    updated_at = NOW()
		FROM target
		WHERE a.id = $1
		  AND ($4::text IS NULL
		       OR a.interviews->target.idx->>'status' = $4::text
		       OR a.interviews->target.idx->>'status' <> ALL($5::text[]))
		RETURNING `+appColumns,
		id, interviewID, patch, status, statusStrings(hiring.TerminalRoundStatuses),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.explainInterviewMiss(ctx, id, interviewID, func(iv *hiring.Interview) error {
			if p.Status == nil || hiring.IsRoundTransitionAllowed(iv.Status, *p.Status) {
				return nil
			}
			return &hiring.ValidationError{Msg: fmt.Sprintf("interview is %s and cannot move to %s", iv.Status, *p.Status)}
		})
	}
	if err != nil {
		return nil, fmt.Errorf("update interview: %w", err)
	}
	return app, nil
}

// AppendFeedback applies hiring.RoundStatusAfterFeedback in SQL: rounds in
// hiring.RoundsRefusingFeedback match no row, every other round moves to
// hiring.RoundStatusOnFeedback.
func (s *Store) AppendFeedback(ctx context.Context, id, interviewID string, f hiring.Feedback) (*hiring.Application, error) {
	if !validID(id) {
		return nil, hiring.NotFound("application")
	}
	entry, err := jsonArray(f)
	if err != nil {
		return nil, err
	}

	app, err := scanApplication(s.pool.QueryRow(ctx, interviewIndex+`
		UPDATE applications a
		SET interviews = jsonb_set(
		        jsonb_set(
		            a.interviews,
		            ARRAY[target.idx::text, 'feedback'],
		            COALESCE(a.interviews->target.idx->'feedback', '[]'::jsonb) || $3::jsonb),
		        ARRAY[target.idx::text, 'status'],
		        to_jsonb($4::text)),
		    updated_at = NOW()
		FROM target
		WHERE a.id = $1
		  AND a.interviews->target.idx->>'status' <> ALL($5::text[])
		RETURNING `+appColumns,
		id, interviewID, entry, string(hiring.RoundStatusOnFeedback), statusStrings(hiring.RoundsRefusingFeedback),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.explainInterviewMiss(ctx, id, interviewID, func(iv *hiring.Interview) error {
			_, err := hiring.RoundStatusAfterFeedback(iv.Status)
			return err
		})
	}
	if err != nil {
		return nil, fmt.Errorf("append feedback: %w", err)
	}
	return app, nil
}

func statusStrings(statuses []hiring.RoundStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

// explainInterviewMiss turns a conditional interview update that matched no
// row into the reason: missing application, missing round, or refused by
// the round's current status.
func (s *Store) explainInterviewMiss(ctx context.Context, id, interviewID string, refused func(*hiring.Interview) error) error {
	app, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	iv := app.Interview(interviewID)
	if iv == nil {
		return hiring.NotFound("interview")
	}
	if err := refused(iv); err != nil {
		return err
	}
	// The round changed between the update and this read.
	return fmt.Errorf("interview %s changed concurrently, retry", interviewID)
}
