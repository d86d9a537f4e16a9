package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrStackNotEmpty is returned when a root that still owns children is
	// asked to become a child or to stop being a root.
	ErrStackNotEmpty = errors.New("stack not empty")

	// ErrHasDefinition is returned when a note with a non-empty definition
	// segment is asked to become a root.
	ErrHasDefinition = errors.New("note has a definition")

	// ErrNoChildren is returned when a stack-only action (collapse,
	// shuffle) targets a root without children.
	ErrNoChildren = errors.New("root has no children")
)
