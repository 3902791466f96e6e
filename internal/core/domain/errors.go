package domain

import "errors"

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrItemAlreadyExists = errors.New("item already exists")
	ErrStockExceeded     = errors.New("stock capacity exceeded")
	ErrInvalidItem       = errors.New("invalid item")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrDuplicateRequest  = errors.New("duplicate request")
)
