/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrIllegalState is returned when a record cannot produce its storage keys
	ErrIllegalState = errors.New("illegal state")

	// ErrAccessDenied is returned when a caller lacks the access level an attribute requires
	ErrAccessDenied = errors.New("access denied")

	// ErrInUse is returned when an entity is still referenced and cannot be removed
	ErrInUse = errors.New("entity in use")

	// ErrInvalidToken is returned for malformed or expired pagination tokens
	ErrInvalidToken = errors.New("invalid pagination token")
)

// Kind classifies a ValidationError.
type Kind int

const (
	KindInvalid Kind = iota
	KindReserved
	KindAccessDenied
	KindInUse
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError is a user-correctable problem tied to an attribute or field key.
type ValidationError struct {
	Key     string
	Message string
	Kind    Kind
}

func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return true
	case ErrAccessDenied:
		return e.Kind == KindAccessDenied
	case ErrInUse:
		return e.Kind == KindInUse
	}
	return false
}

// ValidationErrors collects every ValidationError found in one pass.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	for _, e := range v {
		if e.Is(target) {
			return true
		}
	}
	return false
}

// Add appends an invalid-input error.
func (v *ValidationErrors) Add(key, message string) {
	v.AddKind(KindInvalid, key, message)
}

// AddKind appends an error of the given kind.
func (v *ValidationErrors) AddKind(kind Kind, key, message string) {
	*v = append(*v, &ValidationError{Key: key, Message: message, Kind: kind})
}

// Append adds all errors from other.
func (v *ValidationErrors) Append(other ValidationErrors) {
	*v = append(*v, other...)
}

// Messages returns the bare messages in order.
func (v ValidationErrors) Messages() []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		out = append(out, e.Message)
	}
	return out
}

// Err returns nil for an empty collection so callers can write `return errs.Err()`.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// IllegalStateError reports a contract violation, such as a record missing a key field.
type IllegalStateError struct {
	Message string
}

func (e *IllegalStateError) Error() string {
	return "illegal state: " + e.Message
}

func (e *IllegalStateError) Is(target error) bool {
	return target == ErrIllegalState
}

// InvalidTokenError reports a pagination token that cannot be resumed.
type InvalidTokenError struct {
	Token  string
	Reason string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid pagination token %q: %s", e.Token, e.Reason)
}

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken || target == ErrInvalidInput
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(key, message string) error {
	return &ValidationError{Key: key, Message: message}
}

// NewAccessDeniedError creates a ValidationError of kind KindAccessDenied
func NewAccessDeniedError(key, message string) error {
	return &ValidationError{Key: key, Message: message, Kind: KindAccessDenied}
}

// NewInUseError creates a ValidationError of kind KindInUse
func NewInUseError(key, message string) error {
	return &ValidationError{Key: key, Message: message, Kind: KindInUse}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewIllegalStateError creates a new IllegalStateError
func NewIllegalStateError(format string, args ...any) error {
	return &IllegalStateError{Message: fmt.Sprintf(format, args...)}
}

// NewInvalidTokenError creates a new InvalidTokenError
func NewInvalidTokenError(token, reason string) error {
	return &InvalidTokenError{Token: token, Reason: reason}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsIllegalState checks if an error is an illegal state error
func IsIllegalState(err error) bool {
	return errors.Is(err, ErrIllegalState)
}

// IsAccessDenied checks if an error carries an access-denied validation error
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInUse checks if an error carries an in-use validation error
func IsInUse(err error) bool {
	return errors.Is(err, ErrInUse)
}

// IsInvalidToken checks if an error is an invalid pagination token error
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// AsValidationErrors extracts the ValidationErrors carried by err, wrapping a
// single ValidationError when needed.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many, true
	}
	var one *ValidationError
	if errors.As(err, &one) {
		return ValidationErrors{one}, true
	}
	return nil, false
}
