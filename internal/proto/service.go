package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The service exchanges google.protobuf.Struct messages so no generated code
// is needed. The shape of each message is documented on the server methods.

const (
	serviceName = "bookmarker.Bookmarker"

	listCategoriesMethod = "/" + serviceName + "/ListCategories"
	getCategoryMethod    = "/" + serviceName + "/GetCategory"
)

type BookmarkerServer interface {
	ListCategories(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCategory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var BookmarkerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BookmarkerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListCategories",
			Handler:    listCategoriesHandler,
		},
		{
			MethodName: "GetCategory",
			Handler:    getCategoryHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookmarker.proto",
}

func RegisterBookmarkerServer(s grpc.ServiceRegistrar, srv BookmarkerServer) {
	s.RegisterService(&BookmarkerServiceDesc, srv)
}

func listCategoriesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookmarkerServer).ListCategories(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listCategoriesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BookmarkerServer).ListCategories(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getCategoryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookmarkerServer).GetCategory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getCategoryMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BookmarkerServer).GetCategory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type BookmarkerClient struct {
	cc grpc.ClientConnInterface
}

func NewBookmarkerClient(cc grpc.ClientConnInterface) *BookmarkerClient {
	return &BookmarkerClient{cc: cc}
}

func (c *BookmarkerClient) ListCategories(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listCategoriesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookmarkerClient) GetCategory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getCategoryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
