package domain

import "errors"

var (
	ErrInvalidAmount        = errors.New("payment amount must be positive")
	ErrMissingPaymentMethod = errors.New("auto-pay requires a payment method")
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrRequestNotFound      = errors.New("maintenance request not found")
	ErrPersistence          = errors.New("persistence failure")
	ErrInvalidAccount       = errors.New("malformed tenant account")
	ErrInvalidTransition    = errors.New("illegal maintenance status transition")
	ErrInvalidRequest       = errors.New("malformed request payload")
)
