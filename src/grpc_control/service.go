package grpc_control

import (
	"context"
	"fmt"
	"net"

	"perfmon-dashboard/src/analysis"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName                    = "perfmon.Dashboard"
	GetCounterSummariesFullMethod  = "/perfmon.Dashboard/GetCounterSummaries"
	GetCategorySummariesFullMethod = "/perfmon.Dashboard/GetCategorySummaries"
)

// DashboardServer is the query surface exposed over gRPC. Responses are
// google.protobuf.Struct documents with the same shape as the JSON API.
type DashboardServer interface {
	GetCounterSummaries(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetCategorySummaries(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

// QueryService implements DashboardServer on top of a loaded snapshot.
type QueryService struct {
	Snapshot *analysis.Snapshot
	Logger   *logger.Logger
}

// NewQueryService creates a new instance of QueryService
func NewQueryService(snapshot *analysis.Snapshot, log *logger.Logger) *QueryService {
	return &QueryService{Snapshot: snapshot, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *QueryService) GetCounterSummaries(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats := s.Snapshot.Stats()
	return toStruct(map[string]any{
		"source":      stats.Source,
		"fingerprint": stats.Fingerprint,
		"counters":    s.Snapshot.GetCounterSummaries(),
	})
}

// -----------------------------------------------------------------------------

func (s *QueryService) GetCategorySummaries(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]any{
		"categories": s.Snapshot.GetCategorySummaries(),
	})
}

// -----------------------------------------------------------------------------

// toStruct round-trips v through JSON so that the custom null handling of the
// summary types carries over into the Struct.
func toStruct(v map[string]any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, status.Errorf(codes.Internal, "decode response: %v", err)
	}

	out, err := structpb.NewStruct(generic)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Service registration
// -----------------------------------------------------------------------------

func _Dashboard_GetCounterSummaries_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetCounterSummaries(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetCounterSummariesFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).GetCounterSummaries(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dashboard_GetCategorySummaries_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetCategorySummaries(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetCategorySummariesFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).GetCategorySummaries(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Dashboard_ServiceDesc describes perfmon.Dashboard for grpc.Server.
var Dashboard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCounterSummaries", Handler: _Dashboard_GetCounterSummaries_Handler},
		{MethodName: "GetCategorySummaries", Handler: _Dashboard_GetCategorySummaries_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "perfmon/dashboard.proto",
}

// RegisterDashboardServer registers srv on s.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&Dashboard_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// DashboardClient calls perfmon.Dashboard.
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

func (c *DashboardClient) GetCounterSummaries(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetCounterSummariesFullMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) GetCategorySummaries(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetCategorySummariesFullMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Server wrapper
// -----------------------------------------------------------------------------

// GrpcServer serves the query service and grpc.health.v1 on one listener.
type GrpcServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	server *grpc.Server
	health *health.Server
}

func NewGrpcServer(cfg *models.MConfig, snapshot *analysis.Snapshot, log *logger.Logger) *GrpcServer {
	server := grpc.NewServer()
	RegisterDashboardServer(server, NewQueryService(snapshot, log))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return &GrpcServer{Config: cfg, Logger: log, server: server, health: healthServer}
}

// Serve runs on an existing listener until Stop.
func (g *GrpcServer) Serve(lis net.Listener) error {
	return g.server.Serve(lis)
}

// Start listens on grpc_host:grpc_port and blocks.
func (g *GrpcServer) Start() error {
	addr := fmt.Sprintf("%s:%d", g.Config.GrpcHost, g.Config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
	}
	g.Logger.Info("Starting gRPC query server on %s", lis.Addr())
	return g.Serve(lis)
}

// Stop marks the services NOT_SERVING and drains in-flight calls.
func (g *GrpcServer) Stop(ctx context.Context) error {
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()
		return ctx.Err()
	}
}
