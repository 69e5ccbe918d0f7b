// Package glue carries the agent lifecycle over gRPC so the environment
// driver and the learner can live in separate processes. Payloads are
// google.protobuf.Struct messages, so no generated code is needed.
package glue

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "paretoq.glue.Agent"

// Method names, in lifecycle order.
const (
	MethodInit    = "Init"
	MethodStart   = "Start"
	MethodStep    = "Step"
	MethodEnd     = "End"
	MethodCleanup = "Cleanup"
	MethodMessage = "Message"
)

// Payload field names.
const (
	fieldTaskSpec    = "task_spec"
	fieldAck         = "ack"
	fieldObservation = "observation"
	fieldReward      = "reward"
	fieldAction      = "action"
	fieldMessage     = "message"
	fieldResponse    = "response"
)

// #region client-interface
// AgentServiceClient is the client side of the service.
type AgentServiceClient interface {
	Init(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Start(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Step(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	End(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Cleanup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Message(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type agentServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAgentServiceClient binds the service to a connection.
func NewAgentServiceClient(cc grpc.ClientConnInterface) AgentServiceClient {
	return &agentServiceClient{cc: cc}
}

func (c *agentServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *agentServiceClient) Init(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodInit, in, opts)
}

func (c *agentServiceClient) Start(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStart, in, opts)
}

func (c *agentServiceClient) Step(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStep, in, opts)
}

func (c *agentServiceClient) End(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodEnd, in, opts)
}

func (c *agentServiceClient) Cleanup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCleanup, in, opts)
}

func (c *agentServiceClient) Message(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodMessage, in, opts)
}

// #endregion client-interface

// #region server-interface
// AgentServiceServer is the server side of the service.
type AgentServiceServer interface {
	Init(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Start(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Step(context.Context, *structpb.Struct) (*structpb.Struct, error)
	End(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Cleanup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Message(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type call func(AgentServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn call) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(AgentServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(AgentServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AgentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodInit, AgentServiceServer.Init),
		unary(MethodStart, AgentServiceServer.Start),
		unary(MethodStep, AgentServiceServer.Step),
		unary(MethodEnd, AgentServiceServer.End),
		unary(MethodCleanup, AgentServiceServer.Cleanup),
		unary(MethodMessage, AgentServiceServer.Message),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "paretoq/glue/agent",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv AgentServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// #endregion server-interface

// #region payload
func floatList(xs []float64) *structpb.Value {
	vals := make([]*structpb.Value, len(xs))
	for i, x := range xs {
		vals[i] = structpb.NewNumberValue(x)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

func floatsOf(s *structpb.Struct, field string) []float64 {
	vals := s.GetFields()[field].GetListValue().GetValues()
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v.GetNumberValue()
	}
	return out
}

func stringOf(s *structpb.Struct, field string) string {
	return s.GetFields()[field].GetStringValue()
}

func numberOf(s *structpb.Struct, field string) float64 {
	return s.GetFields()[field].GetNumberValue()
}

func payload(fields map[string]*structpb.Value) *structpb.Struct {
	return &structpb.Struct{Fields: fields}
}

// #endregion payload
