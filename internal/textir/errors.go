package textir

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCell reports a cell kind or operator the emitter cannot lower.
	ErrUnsupportedCell = errors.New("unsupported cell")
	// ErrUnsupportedValue reports a parameter or attribute of an unsupported type.
	ErrUnsupportedValue = errors.New("unsupported parameter or attribute value")
	// ErrInconsistent reports a malformed netlist, such as an unresolved net or
	// a width mismatch.
	ErrInconsistent = errors.New("internal consistency violation")
)

// CellError attaches the index of the offending cell to an emission error.
type CellError struct {
	Index int
	Kind  string
	Err   error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("textir: cell %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
