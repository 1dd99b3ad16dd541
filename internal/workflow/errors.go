package workflow

import "errors"

// Business failures the caller branches on with errors.Is. Anything else
// coming out of this package is an infrastructure error (store
// unavailable etc.) wrapped with context.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("invalid transfer request")
	ErrMissingReason   = errors.New("rejection reason required")
	ErrAlreadyDecided  = errors.New("transfer request already decided")
	ErrTransferPending = errors.New("equipment already has a pending transfer")
)
