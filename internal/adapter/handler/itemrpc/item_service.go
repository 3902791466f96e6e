package itemrpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "inventory.v1.ItemService"

const (
	ItemService_CreateItem_FullMethodName     = "/" + serviceName + "/CreateItem"
	ItemService_FindItemByName_FullMethodName = "/" + serviceName + "/FindItemByName"
	ItemService_ListItems_FullMethodName      = "/" + serviceName + "/ListItems"
	ItemService_DeleteItem_FullMethodName     = "/" + serviceName + "/DeleteItem"
	ItemService_IncrementItem_FullMethodName  = "/" + serviceName + "/IncrementItem"
)

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	MaxCapacity int    `json:"maxCapacity"`
	Quantity    int    `json:"quantity"`
	Type        string `json:"type"`
}

type CreateItemRequest struct {
	Item Item `json:"item"`
}

type FindItemByNameRequest struct {
	Name string `json:"name"`
}

type ListItemsRequest struct{}

type ListItemsResponse struct {
	Items []Item `json:"items"`
}

type DeleteItemRequest struct {
	ID int64 `json:"id"`
}

type DeleteItemResponse struct{}

type IncrementItemRequest struct {
	ID             int64  `json:"id"`
	Amount         int    `json:"amount"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type ItemServiceServer interface {
	CreateItem(context.Context, *CreateItemRequest) (*Item, error)
	FindItemByName(context.Context, *FindItemByNameRequest) (*Item, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*DeleteItemResponse, error)
	IncrementItem(context.Context, *IncrementItemRequest) (*Item, error)
}

func RegisterItemServiceServer(s grpc.ServiceRegistrar, srv ItemServiceServer) {
	s.RegisterService(&ItemService_ServiceDesc, srv)
}

var ItemService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ItemServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateItem",
			Handler:    unaryHandler(ItemService_CreateItem_FullMethodName, ItemServiceServer.CreateItem),
		},
		{
			MethodName: "FindItemByName",
			Handler:    unaryHandler(ItemService_FindItemByName_FullMethodName, ItemServiceServer.FindItemByName),
		},
		{
			MethodName: "ListItems",
			Handler:    unaryHandler(ItemService_ListItems_FullMethodName, ItemServiceServer.ListItems),
		},
		{
			MethodName: "DeleteItem",
			Handler:    unaryHandler(ItemService_DeleteItem_FullMethodName, ItemServiceServer.DeleteItem),
		},
		{
			MethodName: "IncrementItem",
			Handler:    unaryHandler(ItemService_IncrementItem_FullMethodName, ItemServiceServer.IncrementItem),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/item_service",
}

func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(ItemServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ItemServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ItemServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type ItemServiceClient interface {
	CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*Item, error)
	FindItemByName(ctx context.Context, in *FindItemByNameRequest, opts ...grpc.CallOption) (*Item, error)
	ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error)
	DeleteItem(ctx context.Context, in *DeleteItemRequest, opts ...grpc.CallOption) (*DeleteItemResponse, error)
	IncrementItem(ctx context.Context, in *IncrementItemRequest, opts ...grpc.CallOption) (*Item, error)
}

type itemServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewItemServiceClient(cc grpc.ClientConnInterface) ItemServiceClient {
	return &itemServiceClient{cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *itemServiceClient) CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[CreateItemRequest, Item](ctx, c.cc, ItemService_CreateItem_FullMethodName, in, opts)
}

func (c *itemServiceClient) FindItemByName(ctx context.Context, in *FindItemByNameRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[FindItemByNameRequest, Item](ctx, c.cc, ItemService_FindItemByName_FullMethodName, in, opts)
}

func (c *itemServiceClient) ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error) {
	return invoke[ListItemsRequest, ListItemsResponse](ctx, c.cc, ItemService_ListItems_FullMethodName, in, opts)
}

func (c *itemServiceClient) DeleteItem(ctx context.Context, in *DeleteItemRequest, opts ...grpc.CallOption) (*DeleteItemResponse, error) {
	return invoke[DeleteItemRequest, DeleteItemResponse](ctx, c.cc, ItemService_DeleteItem_FullMethodName, in, opts)
}

func (c *itemServiceClient) IncrementItem(ctx context.Context, in *IncrementItemRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[IncrementItemRequest, Item](ctx, c.cc, ItemService_IncrementItem_FullMethodName, in, opts)
}
