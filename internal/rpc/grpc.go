package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the registered gRPC service.
const ServiceName = "mercy.v1.TrackerService"

type call func(s *Service, ctx context.Context, req Request) (any, error)

var methods = map[string]call{
	"RecordSingle": func(s *Service, ctx context.Context, req Request) (any, error) { return s.RecordSingle(ctx, req) },
	"RecordBatch":  func(s *Service, ctx context.Context, req Request) (any, error) { return s.RecordBatch(ctx, req) },
	"Reset":        func(s *Service, ctx context.Context, req Request) (any, error) { return s.Reset(ctx, req) },
	"GetView":      func(s *Service, ctx context.Context, req Request) (any, error) { return s.View(ctx, req) },
	"GetDashboard": func(s *Service, ctx context.Context, req Request) (any, error) { return s.Dashboard(ctx), nil },
	"GetCurve":     func(s *Service, ctx context.Context, req Request) (any, error) { return s.Curve(ctx, req) },
	"AdjustInventory": func(s *Service, ctx context.Context, req Request) (any, error) {
		return s.AdjustInventory(ctx, req)
	},
}

// trackerServer is the handler type of the service descriptor.
type trackerServer interface {
	service() *Service
}

func (s *Service) service() *Service { return s }

// ServiceDesc describes mercy.v1.TrackerService. Every method takes and
// returns a google.protobuf.Struct holding the JSON form of Request and of
// the result.
var ServiceDesc = func() grpc.ServiceDesc {
	desc := grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*trackerServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "mercy/v1/tracker.proto",
	}
	for _, name := range []string{"RecordSingle", "RecordBatch", "Reset", "GetView", "GetDashboard", "GetCurve", "AdjustInventory"} {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{MethodName: name, Handler: handler(name, methods[name])})
	}
	return desc
}()

func handler(name string, fn call) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		run := func(ctx context.Context, req any) (any, error) {
			return invoke(ctx, srv.(trackerServer).service(), req.(*structpb.Struct), fn)
		}
		if interceptor == nil {
			return run(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, run)
	}
}

func invoke(ctx context.Context, s *Service, in *structpb.Struct, fn call) (*structpb.Struct, error) {
	var req Request
	if err := fromStruct(in, &req); err != nil {
		return nil, Status(fmt.Errorf("%w: %v", ErrBadRequest, err))
	}
	res, err := fn(s, ctx, req)
	if err != nil {
		return nil, Status(err)
	}
	out, err := toStruct(res)
	if err != nil {
		log.Printf("encode %T: %v", res, err)
		return nil, Status(err)
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	b, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, err
	}
	return structpb.NewStruct(payload)
}

// Register adds the tracker service to srv.
func Register(srv grpc.ServiceRegistrar, s *Service) {
	srv.RegisterService(&ServiceDesc, s)
}

// Server hosts the tracker gRPC API and health checks.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer listens on addr and registers svc. opts are passed to
// grpc.NewServer.
func NewServer(addr string, svc *Service, opts ...grpc.ServerOption) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	grpcServer := grpc.NewServer(opts...)
	healthServer := health.NewServer()
	Register(grpcServer, svc)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return &Server{listener: listener, grpcServer: grpcServer, health: healthServer}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve runs until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	defer s.Close()

	log.Printf("tracker gRPC listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close stops the server immediately.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// Client calls TrackerService over conn.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req and decodes the reply into out.
func (c *Client) Call(ctx context.Context, method string, req Request, out any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	reply := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, reply); err != nil {
		return err
	}
	return fromStruct(reply, out)
}
