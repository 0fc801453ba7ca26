package domain

import "errors"

var (
	// ErrUnknownCategory is returned for category values outside the fixed bucket set.
	// Keeping this sentinel in domain allows adapters to map it consistently to 400/VALIDATION_ERROR.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrListingUnavailable signals that both the cache tier and the durable
	// store failed for a synchronous read. It is the only error a reader surfaces.
	ErrListingUnavailable = errors.New("listing unavailable")
	// ErrInvalidInput covers malformed paging or hook payloads.
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)
