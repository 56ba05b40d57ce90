package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "hiring.v1.HiringService"

// HiringServiceServer is the server API for hiring.v1.HiringService. Every
// method takes and returns a google.protobuf.Struct carrying the same JSON
// shapes as the HTTP API.
type HiringServiceServer interface {
	CreateApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListApplicationsByApplicant(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListApplicationsByJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEmployerPipeline(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateHiringStage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateScore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddNote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ScheduleInterview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateInterview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddInterviewFeedback(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AssignTeamMembers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteApplication(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(HiringServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(HiringServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes hiring.v1.HiringService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HiringServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateApplication", HiringServiceServer.CreateApplication),
		unary("GetApplication", HiringServiceServer.GetApplication),
		unary("ListApplicationsByApplicant", HiringServiceServer.ListApplicationsByApplicant),
		unary("ListApplicationsByJob", HiringServiceServer.ListApplicationsByJob),
		unary("ListEmployerPipeline", HiringServiceServer.ListEmployerPipeline),
		unary("UpdateStatus", HiringServiceServer.UpdateStatus),
		unary("UpdateHiringStage", HiringServiceServer.UpdateHiringStage),
		unary("UpdateScore", HiringServiceServer.UpdateScore),
		unary("AddNote", HiringServiceServer.AddNote),
		unary("ScheduleInterview", HiringServiceServer.ScheduleInterview),
		unary("UpdateInterview", HiringServiceServer.UpdateInterview),
		unary("AddInterviewFeedback", HiringServiceServer.AddInterviewFeedback),
		unary("AssignTeamMembers", HiringServiceServer.AssignTeamMembers),
		unary("DeleteApplication", HiringServiceServer.DeleteApplication),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hiring/v1/hiring.proto",
}

// RegisterHiringServiceServer registers srv on s.
func RegisterHiringServiceServer(s grpc.ServiceRegistrar, srv HiringServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
