package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

// errorStatus maps a service error to an HTTP status and a client-safe message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrItemAlreadyExists),
		errors.Is(err, domain.ErrStockExceeded),
		errors.Is(err, domain.ErrInvalidItem),
		errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, err.Error()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, "store unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// toStatus is the gRPC counterpart of errorStatus.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrItemAlreadyExists), errors.Is(err, domain.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrStockExceeded):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidItem), errors.Is(err, domain.ErrInvalidAmount):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return status.Error(codes.Unavailable, "store unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
