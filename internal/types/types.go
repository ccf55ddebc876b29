package types

import (
	"fmt"
	"go/token"
)

// Severity ranks how strongly an issue should be acted on.
type Severity int

const (
	// SeverityError marks contract violations; the rewrite cannot proceed
	// for the region that produced one.
	SeverityError Severity = iota
	// SeverityWarning marks suspect input that is still rewritable.
	SeverityWarning
	// SeverityInfo marks advisories and pending rewrites.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Issue is one finding produced while scanning a file: a pending
// arithmetic rewrite, a directive problem, a policy contract violation or
// a zero-divisor advisory.
type Issue struct {
	Rule       string
	Category   string // policy or check class that produced the issue
	Filename   string
	Message    string
	Suggestion string // replacement source; empty for pure diagnostics
	Note       string
	Severity   Severity
	Start      token.Position
	End        token.Position

	// RequiredImports lists import paths the suggestion relies on, the
	// runtime package in practice. The fixer injects them after applying
	// the suggestion.
	RequiredImports []string
}

// Rewritable reports whether the issue carries replacement source that a
// fixer can apply.
func (i Issue) Rewritable() bool { return i.Suggestion != "" }

// DiagnosticError is returned by the snippet entry points when the input
// cannot be rewritten as requested. It keeps every issue found so callers
// can report more than the first failure.
type DiagnosticError struct {
	Issues []Issue
}

func (e *DiagnosticError) Error() string {
	if len(e.Issues) == 0 {
		return "rewrite failed"
	}
	first := e.Issues[0]
	msg := fmt.Sprintf("%d:%d: %s", first.Start.Line, first.Start.Column, first.Message)
	if rest := len(e.Issues) - 1; rest > 0 {
		msg = fmt.Sprintf("%s (and %d more)", msg, rest)
	}
	return msg
}
