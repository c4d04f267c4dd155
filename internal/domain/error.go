package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Activation errors
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyActivated     = errors.New("user is already activated")
	ErrCodeSpaceExhausted   = errors.New("could not generate a unique activation code")
	ErrTooManyRequests      = errors.New("too many activation requests")
	ErrActivationInProgress = errors.New("activation request already in progress")

	// Storage errors
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrOperationFailed    = errors.New("database operation failed")
)
