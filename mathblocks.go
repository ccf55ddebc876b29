// Package mathblocks rewrites Go arithmetic into explicit overflow-aware
// calls against the bundled overflow runtime.
//
// Source files tag regions with //math: directives. A directive sits alone
// on the line above a statement or function declaration and names the
// policy governing it:
//
//	//math:checked
//	total := a + b
//
// becomes
//
//	//math:checked
//	total := overflow.MustAdd(a, b)
//
// The checked policy panics on overflow, overflowing wraps, saturating
// clamps to the type's range, and propagating converts overflow into an
// error returned by the enclosing function. //math:default restores the
// native operators inside an outer region.
//
// This package is the library surface: the snippet entry points expand raw
// statement text, and the processing pipeline drives the file engine over
// whole directory trees. The mathblocks command wraps both.
package mathblocks

import (
	"fmt"
	"strings"

	"github.com/makcandrov/math-blocks/internal"
	"github.com/makcandrov/math-blocks/internal/policy"
	"github.com/makcandrov/math-blocks/internal/rewrite"
	tt "github.com/makcandrov/math-blocks/internal/types"
)

// Issue is one finding produced while scanning a file or expanding a
// snippet: a pending rewrite with its replacement source, a directive
// problem, a policy contract violation or a zero-divisor advisory.
type Issue = tt.Issue

// DiagnosticError is returned by the snippet entry points when the input
// cannot be rewritten. It carries every issue found, positioned relative
// to the snippet text.
type DiagnosticError = tt.DiagnosticError

// Checked rewrites every arithmetic operation in the snippet to the Must
// runtime family, which panics on any unrepresentable result.
func Checked(src string) (string, error) {
	return internal.Expand(src, policy.Checked, rewrite.Config{})
}

// Overflowing rewrites every arithmetic operation in the snippet to the
// Wrap runtime family, keeping two's-complement results.
func Overflowing(src string) (string, error) {
	return internal.Expand(src, policy.Overflowing, rewrite.Config{})
}

// Saturating rewrites every arithmetic operation in the snippet to the Sat
// runtime family, which clamps to the operand type's range.
func Saturating(src string) (string, error) {
	return internal.Expand(src, policy.Saturating, rewrite.Config{})
}

// Propagating rewrites every arithmetic operation in the snippet to the
// Try runtime family and prepends a deferred overflow.Recover, so overflow
// surfaces as an error named err in the enclosing function.
func Propagating(src string) (string, error) {
	return internal.Expand(src, policy.Propagating, rewrite.Config{})
}

// Default returns the snippet unchanged. It exists so callers switching
// over policy names can treat the reset policy like the other four.
func Default(src string) (string, error) {
	return internal.Expand(src, policy.Identity, rewrite.Config{})
}

// Expand rewrites the snippet under the named policy with the given
// configuration. Accepted names are those of the //math: directives:
// checked, overflowing, saturating, propagating and default.
func Expand(src, policyName string, cfg Config) (string, error) {
	p, ok := policy.Parse(policyName)
	if !ok {
		return "", fmt.Errorf("unknown policy %q: accepted policies are %s",
			policyName, strings.Join(policy.Names, ", "))
	}
	return internal.Expand(src, p, rewrite.Config{
		RuntimePath: cfg.Runtime,
		ErrName:     cfg.ErrName,
	})
}
