// Package overflow provides explicit-overflow integer arithmetic for code
// produced by the math-blocks rewriter.
//
// Each operation exists in five forms. The plain form returns the result
// together with an ok flag. The Must form panics with *Error on failure,
// the Wrap form keeps Go's native two's-complement result, the Sat form
// clamps to the nearest representable value, and the Try form raises a
// private panic that Recover turns back into an ordinary error return.
//
// Rewritten source imports only this package, which in turn depends on
// nothing outside the standard library.
package overflow

import "unsafe"

// Signed is the type set of Go's signed integer kinds.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is the type set of Go's unsigned integer kinds.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is the type set accepted by every operation in this package.
type Integer interface {
	Signed | Unsigned
}

// isSigned reports whether T is a signed kind. ^0 is negative exactly for
// signed types.
func isSigned[T Integer]() bool {
	var zero T
	return ^zero < zero
}

// minOf returns the smallest value representable by T.
func minOf[T Integer]() T {
	var zero T
	ones := ^zero
	if ones > zero {
		return zero
	}
	return ones << (unsafe.Sizeof(zero)*8 - 1)
}

// maxOf returns the largest value representable by T.
func maxOf[T Integer]() T {
	return ^minOf[T]()
}

// Add returns a+b and whether the sum is representable in T. On overflow
// the returned value is the wrapped sum.
func Add[T Integer](a, b T) (T, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return s, false
	}
	return s, true
}

// Sub returns a-b and whether the difference is representable in T. On
// overflow the returned value is the wrapped difference.
func Sub[T Integer](a, b T) (T, bool) {
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return d, false
	}
	return d, true
}

// Mul returns a*b and whether the product is representable in T. On
// overflow the returned value is the wrapped product.
func Mul[T Integer](a, b T) (T, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return p, false
	}
	// MinT * -1 wraps back to MinT and slips past the division check.
	if isSigned[T]() && a == minOf[T]() && b == ^T(0) {
		return p, false
	}
	return p, true
}

// Div returns a/b and whether the quotient exists and is representable in
// T. A zero divisor yields (0, false); MinT / -1 yields (MinT, false).
func Div[T Integer](a, b T) (T, bool) {
	if b == 0 {
		return 0, false
	}
	if isSigned[T]() && a == minOf[T]() && b == ^T(0) {
		return a, false
	}
	return a / b, true
}

// Rem returns a%b and whether the remainder can be computed. A zero
// divisor yields (0, false). MinT % -1 also yields (0, false): the machine
// operation behind it is the same trapping division.
func Rem[T Integer](a, b T) (T, bool) {
	if b == 0 {
		return 0, false
	}
	if isSigned[T]() && a == minOf[T]() && b == ^T(0) {
		return 0, false
	}
	return a % b, true
}

// Neg returns -v and whether the negation is representable. Only MinT
// fails.
func Neg[T Signed](v T) (T, bool) {
	if v == minOf[T]() {
		return v, false
	}
	return -v, true
}
