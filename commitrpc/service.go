// Package commitrpc serves record commitments over gRPC.
//
// The service uses protobuf well-known types (structpb, wrapperspb) so it
// needs no protoc/codegen toolchain. The equivalent proto definition is:
//
//	package openfunderse.canonhash.v1;
//
//	service Commitment {
//	  rpc Commit(google.protobuf.Struct) returns (google.protobuf.Struct);
//	  rpc Preimage(google.protobuf.StringValue) returns (google.protobuf.BytesValue);
//	}
package commitrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	serviceName    = "openfunderse.canonhash.v1.Commitment"
	commitMethod   = "/" + serviceName + "/Commit"
	preimageMethod = "/" + serviceName + "/Preimage"
)

// CommitmentServer is the server API for the Commitment service.
type CommitmentServer interface {
	Commit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Preimage(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedCommitmentServer can be embedded to have forward compatible implementations.
type UnimplementedCommitmentServer struct{}

func (UnimplementedCommitmentServer) Commit(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Commit not implemented")
}
func (UnimplementedCommitmentServer) Preimage(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Preimage not implemented")
}

// RegisterCommitmentServer registers the Commitment service on a gRPC server.
func RegisterCommitmentServer(s grpc.ServiceRegistrar, srv CommitmentServer) {
	s.RegisterService(&Commitment_ServiceDesc, srv)
}

// CommitmentClient is the client API for the Commitment service.
type CommitmentClient interface {
	Commit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Preimage(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type commitmentClient struct{ cc grpc.ClientConnInterface }

func NewCommitmentClient(cc grpc.ClientConnInterface) CommitmentClient {
	return &commitmentClient{cc: cc}
}

func (c *commitmentClient) Commit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, commitMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *commitmentClient) Preimage(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, preimageMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _Commitment_Commit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommitmentServer).Commit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: commitMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommitmentServer).Commit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Commitment_Preimage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommitmentServer).Preimage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: preimageMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommitmentServer).Preimage(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Commitment_ServiceDesc is the grpc.ServiceDesc for the Commitment service.
var Commitment_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CommitmentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Commit", Handler: _Commitment_Commit_Handler},
		{MethodName: "Preimage", Handler: _Commitment_Preimage_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "canonhash.proto",
}
