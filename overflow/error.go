package overflow

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow indicates a result outside the representable range of
	// the operand type.
	ErrOverflow = errors.New("integer overflow")

	// ErrDivisionByZero indicates a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
)

// Error records a failed arithmetic operation together with its operands.
// The Must family panics with it and the Try family delivers it through
// Recover, so both paths surface the same diagnostics.
type Error struct {
	Op   string // source operator: "+", "-", "*", "/" or "%"
	A, B any    // operand values; B is nil for unary negation
	Err  error  // ErrOverflow or ErrDivisionByZero
}

func (e *Error) Error() string {
	if e.B == nil {
		return fmt.Sprintf("%v: -(%v) (%T)", e.Err, e.A, e.A)
	}
	return fmt.Sprintf("%v: %v %s %v (%T)", e.Err, e.A, e.Op, e.B, e.A)
}

func (e *Error) Unwrap() error { return e.Err }
