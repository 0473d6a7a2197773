// Package rpc describes the classictetris.Engine gRPC service. Messages are protobuf
// well-known types: commands travel as StringValue and games as Struct, so the
// service needs no generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "classictetris.Engine"

	playMethod     = "/" + ServiceName + "/Play"
	sessionsMethod = "/" + ServiceName + "/Sessions"
)

type (
	PlayServer = grpc.BidiStreamingServer[wrapperspb.StringValue, structpb.Struct]
	PlayClient = grpc.BidiStreamingClient[wrapperspb.StringValue, structpb.Struct]
)

// EngineServer hosts games for remote front ends.
type EngineServer interface {
	// Play runs one game for as long as the stream is open. Every inbound message
	// is an action name, every outbound one a snapshot of the game.
	Play(PlayServer) error
	// Sessions lists the games being hosted.
	Sessions(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// EngineServiceDesc is the grpc.ServiceDesc for the Engine service.
var EngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Sessions",
			Handler:    sessionsHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Play",
			Handler:       playHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "classictetris/engine",
}

func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&EngineServiceDesc, srv)
}

func playHandler(srv any, stream grpc.ServerStream) error {
	return srv.(EngineServer).Play(&grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

func sessionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).Sessions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: sessionsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).Sessions(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// EngineClient calls the Engine service.
type EngineClient struct {
	cc grpc.ClientConnInterface
}

func NewEngineClient(cc grpc.ClientConnInterface) *EngineClient {
	return &EngineClient{cc: cc}
}

func (c *EngineClient) Play(ctx context.Context, opts ...grpc.CallOption) (PlayClient, error) {
	stream, err := c.cc.NewStream(ctx, &EngineServiceDesc.Streams[0], playMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}, nil
}

func (c *EngineClient) Sessions(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, sessionsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Dial returns a plaintext connection to the engine server at addr.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	return grpc.NewClient(addr, opts...)
}
