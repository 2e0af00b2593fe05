package domain

import "errors"

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrChainMismatch  = errors.New("chain id mismatch")
	ErrRateLimited    = errors.New("rate limited")
	ErrUnauthorized   = errors.New("unauthorized")
)
