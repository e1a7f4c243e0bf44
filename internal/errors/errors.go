// Package errors holds the error taxonomy shared by ingestion, reconciliation
// and persistence. Every type matches its sentinel through errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidSource = errors.New("invalid source")
	ErrValidation    = errors.New("validation failed")
	ErrPersistence   = errors.New("persistence failed")
)

// Is and As are re-exported so callers importing this package don't also
// need the standard one.
var (
	Is = errors.Is
	As = errors.As
)

// NotFoundError reports a missing source database or store file.
type NotFoundError struct {
	Resource string
	Path     string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NewNotFoundError(resource, path string, err error) *NotFoundError {
	return &NotFoundError{Resource: resource, Path: path, Err: err}
}

// InvalidSourceError reports a source file that fails the signature check.
type InvalidSourceError struct {
	Path   string
	Reason string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source %s: %s", e.Path, e.Reason)
}

func (e *InvalidSourceError) Is(target error) bool {
	return target == ErrInvalidSource
}

func NewInvalidSourceError(path, reason string) *InvalidSourceError {
	return &InvalidSourceError{Path: path, Reason: reason}
}

// ValidationError reports a schema mismatch in a persisted store or a
// required field missing during normalization.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError reports a failed step of a save. Op names the step:
// rotate, marshal, compress, write, sync or rename.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func NewPersistenceError(op, path string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Path: path, Err: err}
}
