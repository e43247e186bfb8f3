package loctree

import "github.com/pkg/errors"

var (
	// ErrEmptyInput is returned when an operation needs at least one
	// location and got none.
	ErrEmptyInput = errors.New("loctree: empty input")
	// ErrUndefinedOperand is returned when a required operand is nil.
	ErrUndefinedOperand = errors.New("loctree: undefined operand")
	// ErrNonFinite is returned by Build for NaN or infinite coordinates.
	ErrNonFinite = errors.New("loctree: non-finite coordinate")
)
