package postgres

import (
	"fmt"
	"strings"

	"jobmate/hiring-service/internal/hiring"
)

var sortColumns = map[hiring.SortField]string{
	hiring.SortCreatedAt: "a.created_at",
	hiring.SortAppliedAt: "a.applied_at",
	hiring.SortUpdatedAt: "a.updated_at",
	hiring.SortScore:     "a.score",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere renders the filters of q as a WHERE clause with positional
// arguments. Malformed job ids are dropped; a job-scoped query whose job
// list ends up empty matches nothing.
func buildWhere(q hiring.ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.JobScoped {
		ids := make([]string, 0, len(q.JobIDs))
		for _, id := range q.JobIDs {
			if validID(id) {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			conds = append(conds, "FALSE")
		} else {
			conds = append(conds, "a.job_id = ANY("+arg(ids)+"::uuid[])")
		}
	}
	if q.ApplicantID != "" {
		if validID(q.ApplicantID) {
			conds = append(conds, "a.applicant_id = "+arg(q.ApplicantID))
		} else {
			conds = append(conds, "FALSE")
		}
	}
	if q.Status != "" {
		conds = append(conds, "a.status = "+arg(string(q.Status)))
	}
	if q.HiringStage != "" {
		conds = append(conds, "a.hiring_stage = "+arg(string(q.HiringStage)))
	}
	if q.Search != "" {
		conds = append(conds, "a.applicant_info->>'name' ILIKE '%' || "+arg(likeEscaper.Replace(q.Search))+" || '%'")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildPageSQL renders the page query for q on top of a WHERE clause built
// by buildWhere.
func buildPageSQL(where string, args []any, q hiring.ListQuery) (string, []any) {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = sortColumns[hiring.SortCreatedAt]
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(appColumns)
	b.WriteString(" FROM applications a")
	b.WriteString(where)
	fmt.Fprintf(&b, " ORDER BY %s %s, a.id %s", col, dir, dir)

	out := append([]any(nil), args...)
	if q.Limit > 0 {
		out = append(out, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(out))
	}
	if q.Offset > 0 {
		out = append(out, q.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(out))
	}
	return b.String(), out
}
