package overflow

// The Sat family implements saturating arithmetic: an unrepresentable
// result clamps to MinT or MaxT according to the sign the exact result
// would have had.

// SatAdd returns a+b clamped to the range of T.
func SatAdd[T Integer](a, b T) T {
	r, ok := Add(a, b)
	if ok {
		return r
	}
	if b > 0 {
		return maxOf[T]()
	}
	return minOf[T]()
}

// SatSub returns a-b clamped to the range of T.
func SatSub[T Integer](a, b T) T {
	r, ok := Sub(a, b)
	if ok {
		return r
	}
	if b > 0 {
		return minOf[T]()
	}
	return maxOf[T]()
}

// SatMul returns a*b clamped to the range of T.
func SatMul[T Integer](a, b T) T {
	r, ok := Mul(a, b)
	if ok {
		return r
	}
	if (a < 0) == (b < 0) {
		return maxOf[T]()
	}
	return minOf[T]()
}

// SatDiv returns a/b with the single overflowing case MinT / -1 clamped
// to MaxT. A zero divisor panics exactly as in unannotated code: there is
// no value to saturate toward.
func SatDiv[T Integer](a, b T) T {
	if isSigned[T]() && a == minOf[T]() && b == ^T(0) {
		return maxOf[T]()
	}
	return a / b
}

// SatRem returns a%b, defining MinT % -1 as 0. A zero divisor panics
// exactly as in unannotated code.
func SatRem[T Integer](a, b T) T {
	if isSigned[T]() && a == minOf[T]() && b == ^T(0) {
		return 0
	}
	return a % b
}

// SatNeg returns -v, clamping -MinT to MaxT.
func SatNeg[T Signed](v T) T {
	r, ok := Neg(v)
	if ok {
		return r
	}
	return maxOf[T]()
}
