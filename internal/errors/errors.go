// Package errors defines the error kinds surfaced by ingestion and export.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeDecoding means the input is not valid text in the declared encoding
	ErrorTypeDecoding ErrorType = "decoding"
	// ErrorTypeStructure means one record's nesting or content could not be parsed
	ErrorTypeStructure ErrorType = "structure"
	// ErrorTypeStorage represents underlying store failures, constraint violations included
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeNotFound means no backing store exists for a collection
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Kind reports the error category.
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// DecodingError is returned when the record stream is not valid UTF-8 text.
type DecodingError struct {
	*BaseError
	Line   int
	Offset int64
}

func NewDecodingError(line int, offset int64, reason string) *DecodingError {
	return &DecodingError{
		BaseError: NewBaseError(ErrorTypeDecoding, fmt.Sprintf("line %d (byte %d): %s", line, offset, reason), nil),
		Line:      line,
		Offset:    offset,
	}
}

// StructureViolation describes one top-level record that could not be extracted.
type StructureViolation struct {
	*BaseError
	Line   int
	Tag    string
	XRef   string
	Reason string
}

func NewStructureViolation(line int, tag, xref, reason string) *StructureViolation {
	msg := fmt.Sprintf("line %d: %s", line, reason)
	if tag != "" {
		msg = fmt.Sprintf("line %d: %s %s: %s", line, tag, xref, reason)
	}
	return &StructureViolation{
		BaseError: NewBaseError(ErrorTypeStructure, msg, nil),
		Line:      line,
		Tag:       tag,
		XRef:      xref,
		Reason:    reason,
	}
}

// StorageError wraps a lower-level store failure.
type StorageError struct {
	*BaseError
	Op string
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{
		BaseError: NewBaseError(ErrorTypeStorage, op, err),
		Op:        op,
	}
}

// CollectionNotFound is returned when a collection has no backing store.
type CollectionNotFound struct {
	*BaseError
	Name string
}

func NewCollectionNotFound(name string) *CollectionNotFound {
	return &CollectionNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("collection not found: %s", name), nil),
		Name:      name,
	}
}

// IndividualNotFound is returned when a collection has no individual with the given id.
type IndividualNotFound struct {
	*BaseError
	ID string
}

func NewIndividualNotFound(id string) *IndividualNotFound {
	return &IndividualNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("individual not found: %s", id), nil),
		ID:        id,
	}
}

// NewConfigValidationFailed is returned when a configuration value is rejected.
func NewConfigValidationFailed(field, reason string) *BaseError {
	return NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil)
}

type kinded interface {
	Kind() ErrorType
}

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if k, ok := err.(kinded); ok && k.Kind() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}
