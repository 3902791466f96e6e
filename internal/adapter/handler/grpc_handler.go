package handler

import (
	"context"
	"fmt"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/beer-stock/internal/adapter/handler/itemrpc"
	"github.com/rl1809/beer-stock/internal/core/service"
)

type GRPCHandler struct {
	itemService *service.ItemService
}

func NewGRPCHandler(itemService *service.ItemService) *GRPCHandler {
	return &GRPCHandler{itemService: itemService}
}

// NewGRPCServer builds a server with panic recovery and call logging and registers h on it.
func NewGRPCServer(h *GRPCHandler, log logrus.FieldLogger) *grpc.Server {
	recoveryOpts := []recovery.Option{
		recovery.WithRecoveryHandler(func(p any) error {
			log.WithField("panic", p).Error("recovered from panic")
			return status.Errorf(codes.Internal, "internal error")
		}),
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		recovery.UnaryServerInterceptor(recoveryOpts...),
		logging.UnaryServerInterceptor(interceptorLogger(log),
			logging.WithLogOnEvents(logging.FinishCall)),
	))
	itemrpc.RegisterItemServiceServer(server, h)
	return server
}

func interceptorLogger(l logrus.FieldLogger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		f := make(logrus.Fields, len(fields)/2)
		for i := 0; i+1 < len(fields); i += 2 {
			f[fmt.Sprint(fields[i])] = fields[i+1]
		}
		entry := l.WithFields(f)

		switch lvl {
		case logging.LevelDebug:
			entry.Debug(msg)
		case logging.LevelInfo:
			entry.Info(msg)
		case logging.LevelWarn:
			entry.Warn(msg)
		case logging.LevelError:
			entry.Error(msg)
		default:
			entry.Info(msg)
		}
	})
}

func (h *GRPCHandler) CreateItem(ctx context.Context, req *itemrpc.CreateItemRequest) (*itemrpc.Item, error) {
	item, err := h.itemService.Create(ctx, ToDomain(fromRPC(req.Item)))
	if err != nil {
		return nil, toStatus(err)
	}
	return toRPC(FromDomain(*item)), nil
}

func (h *GRPCHandler) FindItemByName(ctx context.Context, req *itemrpc.FindItemByNameRequest) (*itemrpc.Item, error) {
	item, err := h.itemService.FindByName(ctx, req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return toRPC(FromDomain(*item)), nil
}

func (h *GRPCHandler) ListItems(ctx context.Context, req *itemrpc.ListItemsRequest) (*itemrpc.ListItemsResponse, error) {
	items, err := h.itemService.ListAll(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &itemrpc.ListItemsResponse{Items: make([]itemrpc.Item, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, *toRPC(FromDomain(item)))
	}
	return resp, nil
}

func (h *GRPCHandler) DeleteItem(ctx context.Context, req *itemrpc.DeleteItemRequest) (*itemrpc.DeleteItemResponse, error) {
	if err := h.itemService.DeleteByID(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &itemrpc.DeleteItemResponse{}, nil
}

func (h *GRPCHandler) IncrementItem(ctx context.Context, req *itemrpc.IncrementItemRequest) (*itemrpc.Item, error) {
	item, err := h.itemService.IncrementOnce(ctx, req.IdempotencyKey, req.ID, req.Amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return toRPC(FromDomain(*item)), nil
}

// ServeGRPC listens on addr and serves in the background. Serve errors are logged.
func ServeGRPC(server *grpc.Server, addr string, log logrus.FieldLogger) (net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	go func() {
		log.Infof("gRPC server listening on %s", lis.Addr())
		if err := server.Serve(lis); err != nil {
			log.WithError(err).Error("gRPC server error")
		}
	}()
	return lis.Addr(), nil
}

func fromRPC(item itemrpc.Item) ItemDTO {
	return ItemDTO(item)
}

func toRPC(dto ItemDTO) *itemrpc.Item {
	item := itemrpc.Item(dto)
	return &item
}
