package overflow

// The Try family implements propagating arithmetic. A failed operation
// raises a private panic value that unwinds to the nearest deferred
// Recover, which converts it into an ordinary error return. The rewriter
// plants the defer, so a Try call never crosses a function boundary
// without a matching Recover.

// propagated carries an *Error through the panic machinery. Keeping the
// type unexported means Recover can never swallow a panic raised by
// anything other than this package's Try functions.
type propagated struct {
	err *Error
}

// Recover converts a propagating arithmetic failure into an error
// assigned through errp. Any other panic, including one raised by the
// Must family, is re-raised untouched. Defer it before the first Try
// call:
//
//	func total(xs []int32) (sum int32, err error) {
//		defer overflow.Recover(&err)
//		for _, x := range xs {
//			sum = overflow.TryAdd(sum, x)
//		}
//		return sum, nil
//	}
func Recover(errp *error) {
	switch r := recover().(type) {
	case nil:
	case propagated:
		if errp == nil {
			panic(r.err)
		}
		*errp = r.err
	default:
		panic(r)
	}
}

// TryAdd returns a+b, raising a propagating failure on overflow.
func TryAdd[T Integer](a, b T) T {
	r, ok := Add(a, b)
	if !ok {
		panic(propagated{&Error{Op: "+", A: a, B: b, Err: ErrOverflow}})
	}
	return r
}

// TrySub returns a-b, raising a propagating failure on overflow.
func TrySub[T Integer](a, b T) T {
	r, ok := Sub(a, b)
	if !ok {
		panic(propagated{&Error{Op: "-", A: a, B: b, Err: ErrOverflow}})
	}
	return r
}

// TryMul returns a*b, raising a propagating failure on overflow.
func TryMul[T Integer](a, b T) T {
	r, ok := Mul(a, b)
	if !ok {
		panic(propagated{&Error{Op: "*", A: a, B: b, Err: ErrOverflow}})
	}
	return r
}

// TryDiv returns a/b, raising a propagating failure on a zero divisor or
// on MinT / -1.
func TryDiv[T Integer](a, b T) T {
	r, ok := Div(a, b)
	if !ok {
		panic(propagated{&Error{Op: "/", A: a, B: b, Err: divErr(b)}})
	}
	return r
}

// TryRem returns a%b, raising a propagating failure on a zero divisor or
// on MinT % -1.
func TryRem[T Integer](a, b T) T {
	r, ok := Rem(a, b)
	if !ok {
		panic(propagated{&Error{Op: "%", A: a, B: b, Err: divErr(b)}})
	}
	return r
}

// TryNeg returns -v, raising a propagating failure when v is MinT.
func TryNeg[T Signed](v T) T {
	r, ok := Neg(v)
	if !ok {
		panic(propagated{&Error{Op: "-", A: v, Err: ErrOverflow}})
	}
	return r
}
