package wizard

import "errors"

var (
	ErrSessionNotFound  = errors.New("booking session not found or expired")
	ErrHandoffNotFound  = errors.New("confirmation not found or already consumed")
	ErrConcurrentUpdate = errors.New("booking session was modified concurrently")
	ErrNotFinalStep     = errors.New("booking can only be submitted from the review step")
	ErrTermsNotAccepted = errors.New("please accept the terms and conditions")
	ErrSubmitInProgress = errors.New("booking submission already in progress")
	ErrEmptyUpdate      = errors.New("update carries no fields")
	ErrUnknownReference = errors.New("unknown catalog reference")
	ErrUnknownStep      = errors.New("unknown wizard step")
	ErrInvalidPayload   = errors.New("invalid step payload")
)
