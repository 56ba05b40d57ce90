// Package httpapi implements the HTTP handlers for the hiring service.
//
// All routes expect x-user-id and x-user-role headers forwarded by the
// Gateway.
//
// Routes:
//
//	POST   /applications                                        → apply to a job
//	GET    /applications/me                                     → caller's applications
//	GET    /applications/{id}                                   → one application
//	DELETE /applications/{id}                                   → delete / withdraw, returns the removed record
//	GET    /jobs/{jobId}/applications                           → job pipeline (filtered, paged)
//	GET    /employer/applicants                                 → employer pipeline across jobs
//	PUT    /applications/{id}/status                            → set status and/or hiringStage
//	PUT    /applications/{id}/stage                             → set hiringStage
//	PUT    /applications/{id}/score                             → set score (0-5)
//	POST   /applications/{id}/notes                             → add note or reply
//	POST   /applications/{id}/interviews                        → schedule interview
//	PUT    /applications/{id}/interviews/{interviewId}          → update interview
//	POST   /applications/{id}/interviews/{interviewId}/feedback → add feedback
//	PUT    /applications/{id}/assign                            → replace assigned team
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jobmate/hiring-service/internal/api"
	"jobmate/hiring-service/internal/hiring"
)

const maxBodyBytes = 1 << 20

// Limiter throttles application submissions; *ratelimit.RedisLimiter
// satisfies it.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) bool { return true }

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	svc     *hiring.Service
	limiter Limiter
}

// NewHandler returns a configured Handler. A nil limiter disables rate
// limiting.
func NewHandler(svc *hiring.Service, limiter Limiter) *Handler {
	if limiter == nil {
		limiter = allowAll{}
	}
	return &Handler{svc: svc, limiter: limiter}
}

// RegisterRoutes mounts all hiring-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /applications", h.createApplication)
	mux.HandleFunc("GET /applications/me", h.myApplications)
	mux.HandleFunc("GET /applications/{id}", h.getApplication)
	mux.HandleFunc("DELETE /applications/{id}", h.deleteApplication)
	mux.HandleFunc("GET /jobs/{jobId}/applications", h.jobApplications)
	mux.HandleFunc("GET /employer/applicants", h.employerApplicants)
	mux.HandleFunc("PUT /applications/{id}/status", h.updateStatus)
	mux.HandleFunc("PUT /applications/{id}/stage", h.updateStage)
	mux.HandleFunc("PUT /applications/{id}/score", h.updateScore)
	mux.HandleFunc("POST /applications/{id}/notes", h.addNote)
	mux.HandleFunc("POST /applications/{id}/interviews", h.scheduleInterview)
	mux.HandleFunc("PUT /applications/{id}/interviews/{interviewId}", h.updateInterview)
	mux.HandleFunc("POST /applications/{id}/interviews/{interviewId}/feedback", h.addFeedback)
	mux.HandleFunc("PUT /applications/{id}/assign", h.assignTeam)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.CreateRequest
	if !decode(w, r, &body) {
		return
	}
	applicant := body.ApplicantID
	if applicant == "" {
		applicant = actor.UserID
	}
	if !h.limiter.Allow(r.Context(), body.JobID+":"+applicant) {
		jsonError(w, "too many applications, try again later", http.StatusTooManyRequests)
		return
	}

	app, err := h.svc.CreateApplication(r.Context(), actor, body.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonStatus(w, app, http.StatusCreated)
}

func (h *Handler) myApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	apps, err := h.svc.ListApplicationsByApplicant(r.Context(), actor, r.URL.Query().Get("applicantId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, apps)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	app, err := h.svc.GetApplication(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.DeleteApplication(r.Context(), actor, r.PathValue("id")))
}

func (h *Handler) jobApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	req, err := api.ListRequestFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListApplicationsByJob(r.Context(), actor, r.PathValue("jobId"), req.Options())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, page)
}

func (h *Handler) employerApplicants(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	req, err := api.ListRequestFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListEmployerPipeline(r.Context(), actor, req.EmployerID, req.Options())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, page)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.StatusRequest
	if !decode(w, r, &body) {
		return
	}
	h.respond(w, r)(h.svc.UpdateStatus(r.Context(), actor, r.PathValue("id"), body.Change()))
}

func (h *Handler) updateStage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.StageRequest
	if !decode(w, r, &body) {
		return
	}
	h.respond(w, r)(h.svc.UpdateHiringStage(r.Context(), actor, r.PathValue("id"), body.HiringStage))
}

func (h *Handler) updateScore(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.ScoreRequest
	if !decode(w, r, &body) {
		return
	}
	if body.Score == nil {
		jsonError(w, "body must contain score", http.StatusBadRequest)
		return
	}
	h.respond(w, r)(h.svc.UpdateScore(r.Context(), actor, r.PathValue("id"), *body.Score))
}

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.NoteRequest
	if !decode(w, r, &body) {
		return
	}
	h.respond(w, r)(h.svc.AddNote(r.Context(), actor, r.PathValue("id"), body.Text, body.ReplyToNoteID))
}

func (h *Handler) scheduleInterview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.ScheduleRequest
	if !decode(w, r, &body) {
		return
	}
	h.respond(w, r)(h.svc.ScheduleInterview(r.Context(), actor, r.PathValue("id"), body.Input()))
}

func (h *Handler) updateInterview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.InterviewUpdateRequest
	if !decode(w, r, &body) {
		return
	}
	h.respond(w, r)(h.svc.UpdateInterview(r.Context(), actor, r.PathValue("id"), r.PathValue("interviewId"), body.Update()))
}

func (h *Handler) addFeedback(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.FeedbackRequest
	if !decode(w, r, &body) {
		return
	}
	h.respond(w, r)(h.svc.AddInterviewFeedback(r.Context(), actor, r.PathValue("id"), r.PathValue("interviewId"), body.Rating, body.Comment))
}

func (h *Handler) assignTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var body api.AssignRequest
	if !decode(w, r, &body) {
		return
	}
	h.respond(w, r)(h.svc.AssignTeamMembers(r.Context(), actor, r.PathValue("id"), body.TeamMembers))
}

// respond writes the application returned by a mutating service call.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request) func(*hiring.Application, error) {
	return func(app *hiring.Application, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		jsonOK(w, app)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// actorFrom reads the caller identity forwarded by the Gateway. A missing
// role is treated as candidate.
func actorFrom(w http.ResponseWriter, r *http.Request) (hiring.Actor, bool) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return hiring.Actor{}, false
	}
	role := hiring.RoleCandidate
	if raw := r.Header.Get("x-user-role"); raw != "" {
		parsed, err := hiring.ParseRole(raw)
		if err != nil {
			jsonError(w, "invalid x-user-role header", http.StatusUnauthorized)
			return hiring.Actor{}, false
		}
		role = parsed
	}
	return hiring.Actor{UserID: userID, Role: role}, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *hiring.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, hiring.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, hiring.ErrConflict):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, hiring.ErrForbidden):
		jsonError(w, "not authorized to access this application", http.StatusForbidden)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, v, http.StatusOK)
}

func jsonStatus(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonStatus(w, map[string]string{"error": msg}, code)
}
