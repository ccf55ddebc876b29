package checks

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makcandrov/math-blocks/internal/types"
)

func detect(t *testing.T, src string) []types.Issue {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	require.NoError(t, err)
	return DetectZeroDivisors("src.go", file, fset, "overflow")
}

func TestDetectZeroDivisors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected int
		severity types.Severity
		message  string
	}{
		{
			name:     "literal zero divisor",
			body:     "q := overflow.MustDiv(a, 0)\n_ = q",
			expected: 1,
			severity: types.SeverityError,
			message:  "is always zero",
		},
		{
			name:     "variable known to be zero",
			body:     "d := 0\nq := overflow.MustDiv(a, d)\n_ = q",
			expected: 1,
			severity: types.SeverityError,
			message:  "is always zero",
		},
		{
			name:     "declared without initializer",
			body:     "var d int\nq := overflow.MustRem(a, d)\n_ = q",
			expected: 1,
			severity: types.SeverityError,
			message:  "is always zero",
		},
		{
			name:     "join of zero and nonzero paths",
			body:     "d := 0\nif a > 10 {\n\td = 2\n}\nq := overflow.MustDiv(a, d)\n_ = q",
			expected: 1,
			severity: types.SeverityWarning,
			message:  "may be zero",
		},
		{
			name:     "zero through multiplication",
			body:     "d := a * 0\nq := overflow.MustDiv(a, d)\n_ = q",
			expected: 1,
			severity: types.SeverityError,
			message:  "is always zero",
		},
		{
			name:     "difference of two nonzero values",
			body:     "d := 3\nd -= 3\nq := overflow.TryDiv(a, d)\n_ = q",
			expected: 1,
			severity: types.SeverityWarning,
			message:  "may be zero",
		},
		{
			name:     "unknown divisor stays silent",
			body:     "q := overflow.MustDiv(a, b)\n_ = q",
			expected: 0,
		},
		{
			name:     "nonzero guard suppresses the report",
			body:     "d := 0\nif d != 0 {\n\tq := overflow.MustDiv(a, d)\n\t_ = q\n}",
			expected: 0,
		},
		{
			name:     "unreachable else branch stays silent",
			body:     "var d int\nif d == 0 {\n\td = 1\n} else {\n\tq := overflow.MustDiv(a, d)\n\t_ = q\n}",
			expected: 0,
		},
		{
			name:     "increment makes the divisor nonzero",
			body:     "d := 0\nd++\nq := overflow.MustDiv(a, d)\n_ = q",
			expected: 0,
		},
		{
			name:     "loop reassignment forgets the zero",
			body:     "d := 0\nfor i := 0; i < a; i++ {\n\td = i\n}\nq := overflow.MustDiv(a, d)\n_ = q",
			expected: 0,
		},
		{
			name:     "wrapping division keeps native semantics",
			body:     "q := overflow.WrapDiv(a, 0)\n_ = q",
			expected: 0,
		},
		{
			name:     "foreign package is not the runtime",
			body:     "q := other.MustDiv(a, 0)\n_ = q",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package main\n\nfunc run(a, b int) {\n" + indentBody(tt.body) + "}\n"
			issues := detect(t, src)
			require.Len(t, issues, tt.expected)
			if tt.expected > 0 {
				assert.Equal(t, RuleZeroDivisor, issues[0].Rule)
				assert.Equal(t, "divide-by-zero", issues[0].Category)
				assert.Equal(t, tt.severity, issues[0].Severity)
				assert.Contains(t, issues[0].Message, tt.message)
			}
		})
	}
}

func TestZeroDivisorNotes(t *testing.T) {
	src := `package main

func run(a int) {
	q := overflow.MustDiv(a, 0)
	r := overflow.TryRem(a, 0)
	_, _ = q, r
}
`
	issues := detect(t, src)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Note, "panics")
	assert.Contains(t, issues[1].Note, "ErrDivisionByZero")
}

func TestZeroDivisorInsideFuncLit(t *testing.T) {
	src := `package main

func run(a int) {
	f := func() int {
		d := 0
		return overflow.MustDiv(a, d)
	}
	_ = f
}
`
	issues := detect(t, src)
	require.Len(t, issues, 1)
	assert.Equal(t, types.SeverityError, issues[0].Severity)
}

func TestZeroDivisorPositions(t *testing.T) {
	src := `package main

func run(a int) {
	d := 0
	q := overflow.MustDiv(a, d)
	_ = q
}
`
	issues := detect(t, src)
	require.Len(t, issues, 1)
	assert.Equal(t, 5, issues[0].Start.Line)
	assert.Equal(t, "src.go", issues[0].Filename)
}

func TestZeroDivisorAnalyzer(t *testing.T) {
	src := `package main

func run(a int) int {
	return overflow.MustDiv(a, 0)
}
`
	issues, err := types.RunAnalyzer(src, Analyzer)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "zerodivisor", issues[0].Rule)
	assert.Contains(t, issues[0].Message, "always zero")
}

func indentBody(body string) string {
	var out strings.Builder
	for _, line := range strings.Split(body, "\n") {
		out.WriteByte('\t')
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}
