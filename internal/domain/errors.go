package domain

import "errors"

var (
	// ErrNotFound is returned when an update or delete targets a missing id
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a key already exists, such as a recipe
	// referencing the same ingredient twice
	ErrDuplicate = errors.New("duplicate key")

	// ErrReferenced is returned when deleting a row that is still referenced,
	// such as an ingredient used by a recipe
	ErrReferenced = errors.New("still referenced")

	// ErrMissingReference is returned when a write points at a row that does
	// not exist, such as linking a recipe to an unknown ingredient
	ErrMissingReference = errors.New("missing reference")

	// ErrInvalid is returned for records that fail application validation
	ErrInvalid = errors.New("invalid record")
)

// IsConstraint reports whether err is a store constraint violation
func IsConstraint(err error) bool {
	return errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrReferenced) ||
		errors.Is(err, ErrMissingReference)
}
