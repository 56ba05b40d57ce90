package grpcserver_test

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/hiring-service/internal/grpcserver"
	"jobmate/hiring-service/internal/hiring"
	"jobmate/hiring-service/internal/memstore"
)

func dial(t *testing.T) *grpc.ClientConn {
	t.Helper()
	store := memstore.New()
	store.PutUser(hiring.User{ID: "emp", Name: "Erin", Role: hiring.RoleEmployer})
	store.PutUser(hiring.User{ID: "cand", Name: "Cody", Role: hiring.RoleCandidate})
	store.PutJob(hiring.Job{ID: "job", EmployerID: "emp"})
	svc := hiring.NewService(store, store, store, nil, hiring.Policy{})

	lis := bufconn.Listen(1 << 20)
	srv := grpcserver.NewGRPCServer(svc)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func call(t *testing.T, conn *grpc.ClientConn, method, user, role string, req map[string]any) (*structpb.Struct, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	ctx := context.Background()
	if user != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-user-id", user, "x-user-role", role)
	}
	out := &structpb.Struct{}
	err = conn.Invoke(ctx, "/"+grpcserver.ServiceName+"/"+method, in, out)
	return out, err
}

func TestGRPC_ApplyScheduleFeedback(t *testing.T) {
	conn := dial(t)

	app, err := call(t, conn, "CreateApplication", "cand", "candidate", map[string]any{"jobId": "job", "coverLetter": "hi"})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	id := app.Fields["id"].GetStringValue()
	if id == "" {
		t.Fatal("CreateApplication returned no id")
	}
	if got := app.Fields["status"].GetStringValue(); got != "Pending" {
		t.Errorf("status = %q, want Pending", got)
	}

	app, err = call(t, conn, "ScheduleInterview", "emp", "employer", map[string]any{
		"applicationId": id,
		"scheduledAt":   "2026-11-03T09:30:00Z",
		"type":          "Phone",
	})
	if err != nil {
		t.Fatalf("ScheduleInterview: %v", err)
	}
	rounds := app.Fields["interviews"].GetListValue().GetValues()
	if len(rounds) != 1 {
		t.Fatalf("interviews = %v", rounds)
	}
	ivID := rounds[0].GetStructValue().Fields["id"].GetStringValue()

	app, err = call(t, conn, "AddInterviewFeedback", "emp", "employer", map[string]any{
		"applicationId": id, "interviewId": ivID, "rating": 5, "comment": "excellent",
	})
	if err != nil {
		t.Fatalf("AddInterviewFeedback: %v", err)
	}
	round := app.Fields["interviews"].GetListValue().GetValues()[0].GetStructValue()
	if got := round.Fields["status"].GetStringValue(); got != "Completed" {
		t.Errorf("round status = %q, want Completed", got)
	}

	page, err := call(t, conn, "ListApplicationsByJob", "emp", "employer", map[string]any{"jobId": "job", "limit": 5})
	if err != nil {
		t.Fatalf("ListApplicationsByJob: %v", err)
	}
	if total := page.Fields["total"].GetNumberValue(); total != 1 {
		t.Errorf("total = %v, want 1", total)
	}

	mine, err := call(t, conn, "ListApplicationsByApplicant", "cand", "candidate", map[string]any{})
	if err != nil {
		t.Fatalf("ListApplicationsByApplicant: %v", err)
	}
	if n := len(mine.Fields["applications"].GetListValue().GetValues()); n != 1 {
		t.Errorf("applications = %d, want 1", n)
	}
}

func TestGRPC_ErrorCodes(t *testing.T) {
	conn := dial(t)
	app, err := call(t, conn, "CreateApplication", "cand", "candidate", map[string]any{"jobId": "job"})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	id := app.Fields["id"].GetStringValue()

	cases := []struct {
		name, method, user, role string
		req                      map[string]any
		want                     codes.Code
	}{
		{"no identity", "GetApplication", "", "", map[string]any{"applicationId": id}, codes.Unauthenticated},
		{"duplicate", "CreateApplication", "cand", "candidate", map[string]any{"jobId": "job"}, codes.AlreadyExists},
		{"unknown application", "GetApplication", "emp", "employer", map[string]any{"applicationId": "missing"}, codes.NotFound},
		{"candidate cannot score", "UpdateScore", "cand", "candidate", map[string]any{"applicationId": id, "score": 3}, codes.PermissionDenied},
		{"score out of range", "UpdateScore", "emp", "employer", map[string]any{"applicationId": id, "score": 9}, codes.InvalidArgument},
		{"missing score", "UpdateScore", "emp", "employer", map[string]any{"applicationId": id}, codes.InvalidArgument},
		{"bad stage", "UpdateHiringStage", "emp", "employer", map[string]any{"applicationId": id, "hiringStage": "Onsite"}, codes.InvalidArgument},
		{"unknown parent note", "AddNote", "emp", "employer", map[string]any{"applicationId": id, "text": "x", "replyToNoteId": "nope"}, codes.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := call(t, conn, tc.method, tc.user, tc.role, tc.req)
			if got := status.Code(err); got != tc.want {
				t.Errorf("code = %v, want %v (err %v)", got, tc.want, err)
			}
		})
	}
}

func TestGRPC_DeleteApplication(t *testing.T) {
	conn := dial(t)
	app, err := call(t, conn, "CreateApplication", "cand", "candidate", map[string]any{"jobId": "job"})
	if err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	id := app.Fields["id"].GetStringValue()

	deleted, err := call(t, conn, "DeleteApplication", "emp", "employer", map[string]any{"applicationId": id})
	if err != nil {
		t.Fatalf("DeleteApplication: %v", err)
	}
	if deleted.Fields["id"].GetStringValue() != id || deleted.Fields["status"].GetStringValue() != "Pending" {
		t.Errorf("DeleteApplication returned %v, want the removed record", deleted.AsMap())
	}
	_, err = call(t, conn, "GetApplication", "emp", "employer", map[string]any{"applicationId": id})
	if status.Code(err) != codes.NotFound {
		t.Errorf("GetApplication after delete: %v, want NotFound", err)
	}
}
