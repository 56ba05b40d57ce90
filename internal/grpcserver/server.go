// Package grpcserver implements the HiringService gRPC server.
//
// It delegates all business logic to hiring.Service and handles only the
// gRPC transport concerns: metadata extraction, error mapping, and
// conversion between google.protobuf.Struct payloads and domain types.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/hiring-service/internal/api"
	"jobmate/hiring-service/internal/hiring"
)

// Server implements HiringServiceServer.
type Server struct {
	svc *hiring.Service
}

var _ HiringServiceServer = (*Server)(nil)

// NewServer constructs a gRPC Server backed by the given hiring.Service.
func NewServer(svc *hiring.Service) *Server {
	return &Server{svc: svc}
}

// NewGRPCServer returns a grpc.Server with the hiring service registered.
func NewGRPCServer(svc *hiring.Service, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(recoverPanics, logErrors))
	s := grpc.NewServer(opts...)
	RegisterHiringServiceServer(s, NewServer(svc))
	return s
}

// ─── Request shapes ──────────────────────────────────────────────────────────

type applicationRef struct {
	ApplicationID string `json:"applicationId"`
}

type interviewRef struct {
	ApplicationID string `json:"applicationId"`
	InterviewID   string `json:"interviewId"`
}

// ─── RPC implementations ──────────────────────────────────────────────────────

func (s *Server) CreateApplication(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.CreateRequest
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.CreateApplication(ctx, actor, req.Input()))
}

func (s *Server) GetApplication(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req applicationRef
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.GetApplication(ctx, actor, req.ApplicationID))
}

func (s *Server) ListApplicationsByApplicant(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		ApplicantID string `json:"applicantId"`
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	apps, err := s.svc.ListApplicationsByApplicant(ctx, actor, req.ApplicantID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(map[string]any{"applications": apps})
}

func (s *Server) ListApplicationsByJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		JobID string `json:"jobId"`
		api.ListRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.ListApplicationsByJob(ctx, actor, req.JobID, req.Options()))
}

func (s *Server) ListEmployerPipeline(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.ListRequest
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.ListEmployerPipeline(ctx, actor, req.EmployerID, req.Options()))
}

func (s *Server) UpdateStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		applicationRef
		api.StatusRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.UpdateStatus(ctx, actor, req.ApplicationID, req.Change()))
}

func (s *Server) UpdateHiringStage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		applicationRef
		api.StageRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.UpdateHiringStage(ctx, actor, req.ApplicationID, req.HiringStage))
}

func (s *Server) UpdateScore(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		applicationRef
		api.ScoreRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	if req.Score == nil {
		return nil, status.Error(codes.InvalidArgument, "score is required")
	}
	return reply(s.svc.UpdateScore(ctx, actor, req.ApplicationID, *req.Score))
}

func (s *Server) AddNote(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		applicationRef
		api.NoteRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.AddNote(ctx, actor, req.ApplicationID, req.Text, req.ReplyToNoteID))
}

func (s *Server) ScheduleInterview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		applicationRef
		api.ScheduleRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.ScheduleInterview(ctx, actor, req.ApplicationID, req.Input()))
}

func (s *Server) UpdateInterview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		interviewRef
		api.InterviewUpdateRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.UpdateInterview(ctx, actor, req.ApplicationID, req.InterviewID, req.Update()))
}

func (s *Server) AddInterviewFeedback(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		interviewRef
		api.FeedbackRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.AddInterviewFeedback(ctx, actor, req.ApplicationID, req.InterviewID, req.Rating, req.Comment))
}

func (s *Server) AssignTeamMembers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		applicationRef
		api.AssignRequest
	}
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.AssignTeamMembers(ctx, actor, req.ApplicationID, req.TeamMembers))
}

func (s *Server) DeleteApplication(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req applicationRef
	actor, err := prepare(ctx, in, &req)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.DeleteApplication(ctx, actor, req.ApplicationID))
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// prepare authenticates the caller and decodes the request payload into req.
func prepare(ctx context.Context, in *structpb.Struct, req any) (hiring.Actor, error) {
	actor, err := actorFromCtx(ctx)
	if err != nil {
		return hiring.Actor{}, err
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return hiring.Actor{}, status.Error(codes.InvalidArgument, "invalid request payload")
	}
	if err := json.Unmarshal(raw, req); err != nil {
		return hiring.Actor{}, status.Errorf(codes.InvalidArgument, "invalid request payload: %v", err)
	}
	return actor, nil
}

// actorFromCtx extracts the x-user-id and x-user-role values forwarded by
// the Gateway via gRPC metadata. A missing role is treated as candidate.
func actorFromCtx(ctx context.Context) (hiring.Actor, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return hiring.Actor{}, status.Error(codes.Unauthenticated, "missing metadata")
	}
	ids := md.Get("x-user-id")
	if len(ids) == 0 || ids[0] == "" {
		return hiring.Actor{}, status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	role := hiring.RoleCandidate
	if roles := md.Get("x-user-role"); len(roles) > 0 && roles[0] != "" {
		parsed, err := hiring.ParseRole(roles[0])
		if err != nil {
			return hiring.Actor{}, status.Error(codes.Unauthenticated, "invalid x-user-role metadata")
		}
		role = parsed
	}
	return hiring.Actor{UserID: ids[0], Role: role}, nil
}

// reply converts a service result into a response.
func reply(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(v)
}

// toStruct converts v to a Struct through its JSON encoding.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var ve *hiring.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Msg)
	case errors.Is(err, hiring.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, hiring.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, hiring.ErrForbidden):
		return status.Error(codes.PermissionDenied, "not authorized to access this application")
	}
	slog.Error("rpc failed", "err", err)
	return status.Error(codes.Internal, "internal server error")
}

// logErrors logs every call that ends in a non-OK status.
func logErrors(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		slog.Debug("rpc error", "method", info.FullMethod, "code", status.Code(err).String(), "err", err)
	}
	return resp, err
}

// recoverPanics turns a panicking handler into an Internal error so one bad
// request cannot take the process down.
func recoverPanics(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("rpc panic", "method", info.FullMethod, "panic", p, "stack", string(debug.Stack()))
			resp, err = nil, status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}
