package domain

import (
	"errors"
	"fmt"
)

// Process-level faults: artifact loading or artifact skew. Block all
// pipeline runs until an operator fixes the deployment.
var (
	ErrModelsUnavailable = errors.New("models unavailable")
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
)

// Per-request pipeline failures.
var (
	ErrExtraction = errors.New("extraction failed")
	ErrEmptyText  = errors.New("no text found")
)

// Store outcomes. Negative results, not faults.
var (
	ErrAlreadyExists = errors.New("username already exists")
	ErrAuthRejected  = errors.New("authentication rejected")
	ErrNotFound      = errors.New("not found")
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
