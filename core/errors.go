package core

import "errors"

// Failure categories. Every error returned by the engine wraps one of these.
var (
	ErrParseMismatch       = errors.New("invalid query")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrValidation          = errors.New("validation failed")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrIO                  = errors.New("i/o failure")
	ErrTransactionState    = errors.New("invalid transaction state")
)
