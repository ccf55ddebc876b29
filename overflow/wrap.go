package overflow

// The Wrap family implements overflowing arithmetic: results reduce modulo
// 2^n exactly as Go's native operators already do. The calls exist so that
// wrapping reads as a deliberate choice at the call site and so every
// policy rewrites to the same surface.

// WrapAdd returns the two's-complement sum a+b.
func WrapAdd[T Integer](a, b T) T { return a + b }

// WrapSub returns the two's-complement difference a-b.
func WrapSub[T Integer](a, b T) T { return a - b }

// WrapMul returns the two's-complement product a*b.
func WrapMul[T Integer](a, b T) T { return a * b }

// WrapDiv returns a/b. Go already defines MinT / -1 as MinT; a zero
// divisor panics exactly as in unannotated code.
func WrapDiv[T Integer](a, b T) T { return a / b }

// WrapRem returns a%b. Go already defines MinT % -1 as 0; a zero divisor
// panics exactly as in unannotated code.
func WrapRem[T Integer](a, b T) T { return a % b }

// WrapNeg returns the two's-complement negation -v, so WrapNeg(MinT) is
// MinT.
func WrapNeg[T Signed](v T) T { return -v }
