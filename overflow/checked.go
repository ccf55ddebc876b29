package overflow

// The Must family implements checked arithmetic: any operation whose exact
// result does not fit the operand type panics with *Error. It backs
// statements governed by a checked policy.

// MustAdd returns a+b, panicking on overflow.
func MustAdd[T Integer](a, b T) T {
	r, ok := Add(a, b)
	if !ok {
		panic(&Error{Op: "+", A: a, B: b, Err: ErrOverflow})
	}
	return r
}

// MustSub returns a-b, panicking on overflow.
func MustSub[T Integer](a, b T) T {
	r, ok := Sub(a, b)
	if !ok {
		panic(&Error{Op: "-", A: a, B: b, Err: ErrOverflow})
	}
	return r
}

// MustMul returns a*b, panicking on overflow.
func MustMul[T Integer](a, b T) T {
	r, ok := Mul(a, b)
	if !ok {
		panic(&Error{Op: "*", A: a, B: b, Err: ErrOverflow})
	}
	return r
}

// MustDiv returns a/b, panicking on a zero divisor or on MinT / -1.
func MustDiv[T Integer](a, b T) T {
	r, ok := Div(a, b)
	if !ok {
		panic(&Error{Op: "/", A: a, B: b, Err: divErr(b)})
	}
	return r
}

// MustRem returns a%b, panicking on a zero divisor or on MinT % -1.
func MustRem[T Integer](a, b T) T {
	r, ok := Rem(a, b)
	if !ok {
		panic(&Error{Op: "%", A: a, B: b, Err: divErr(b)})
	}
	return r
}

// MustNeg returns -v, panicking when v is MinT.
func MustNeg[T Signed](v T) T {
	r, ok := Neg(v)
	if !ok {
		panic(&Error{Op: "-", A: v, Err: ErrOverflow})
	}
	return r
}

func divErr[T Integer](b T) error {
	if b == 0 {
		return ErrDivisionByZero
	}
	return ErrOverflow
}
