package rigidscene

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNode is returned when a node lacks the capability a field
	// requires, even after template resolution.
	ErrInvalidNode = errors.New("rigidscene: node does not provide the required capability")

	// ErrOutOfRange is returned for a value outside its documented interval.
	ErrOutOfRange = errors.New("rigidscene: value out of range")

	// ErrNegative is returned for a negative value where none is allowed.
	ErrNegative = errors.New("rigidscene: value must not be negative")

	// ErrNonPositive is returned for a zero or negative value where a positive
	// one is required.
	ErrNonPositive = errors.New("rigidscene: value must be positive")

	// ErrUnsupportedMassModel is returned for a mass density model other than
	// a box or a sphere.
	ErrUnsupportedMassModel = errors.New("rigidscene: unsupported mass density model")

	// ErrUnknownOutput is returned when a requested output name does not exist.
	ErrUnknownOutput = errors.New("rigidscene: unknown output field")

	// ErrUnsupportedOutput is returned when a requested output exists but the
	// joint kind does not offer it.
	ErrUnsupportedOutput = errors.New("rigidscene: output not offered by this joint")

	// ErrInitializeOnly is returned when a field that can only be written
	// during setup is written afterwards.
	ErrInitializeOnly = errors.New("rigidscene: field can only be set during setup")

	// ErrStaleContact is returned when a contact is edited after the next
	// detection pass replaced it.
	ErrStaleContact = errors.New("rigidscene: contact belongs to an older detection pass")
)

// FieldError reports a rejected field assignment. The node keeps its previous
// value.
type FieldError struct {
	Node  string
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s = %v: %v", e.Node, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(node, field string, value any, err error) error {
	return &FieldError{Node: node, Field: field, Value: value, Err: err}
}
