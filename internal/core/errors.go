package core

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrProductNotFound   = errors.New("product not found")
	ErrPeriodTooLarge    = errors.New("you cannot list receipt in a period larger than 7 days")
	ErrInvalidPeriod     = errors.New("period end is before period start")
	ErrInvalidOrder      = errors.New("order must have at least one item with quantity >= 1")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmailTaken        = errors.New("email already exists")
	ErrAuthLinkExpired   = errors.New("auth link expired, please generate a new one")
	ErrDuplicateRequest  = errors.New("a request with this idempotency key is already being processed")
)
