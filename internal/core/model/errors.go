package model

import "fmt"

// NotFoundError signals that an entity is absent under every ID variation
// that was tried. Handlers map it to 404; services use it to drive the
// prefixed/unprefixed lookup retry.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.EntityType, e.ID)
}

// NewNotFound builds a NotFoundError for the given entity type and ID.
func NewNotFound(entityType, id string) *NotFoundError {
	return &NotFoundError{EntityType: entityType, ID: id}
}

// ValidationError signals missing or malformed caller input. Handlers map
// it to 400; it is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidation builds a ValidationError for the given field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
