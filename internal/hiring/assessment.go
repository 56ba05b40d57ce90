package hiring

import (
	"bytes"
	"context"
	"encoding/json"
)

// RecordAssessment stores the AI assessment of an application. It is called
// by the assessment listener, not by users, so no authorization applies.
// Fields are kept verbatim except that the qualification score is clamped
// to [0, 100] and nil lists become empty.
func (s *Service) RecordAssessment(ctx context.Context, id string, a Assessment) (*Application, error) {
	return s.store.SetAssessment(ctx, id, NormalizeAssessment(a))
}

// NormalizeAssessment applies the ingestion checks to a.
func NormalizeAssessment(a Assessment) Assessment {
	if a.QualificationScore != nil {
		v := *a.QualificationScore
		if v < 0 {
			v = 0
		}
		if v > MaxQualificationScore {
			v = MaxQualificationScore
		}
		a.QualificationScore = &v
	}
	if a.MatchedSkills == nil {
		a.MatchedSkills = []string{}
	}
	if a.MissingSkills == nil {
		a.MissingSkills = []string{}
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if len(a.ParsedResume) == 0 || bytes.Equal(bytes.TrimSpace(a.ParsedResume), []byte("null")) {
		a.ParsedResume = nil
	} else if !json.Valid(a.ParsedResume) {
		a.ParsedResume = nil
	}
	return a
}
