package internal

import (
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makcandrov/math-blocks/internal/checks"
	"github.com/makcandrov/math-blocks/internal/directive"
	"github.com/makcandrov/math-blocks/internal/policy"
	"github.com/makcandrov/math-blocks/internal/rewrite"
	tt "github.com/makcandrov/math-blocks/internal/types"
)

func pos(line, column int) token.Position {
	return token.Position{Line: line, Column: column}
}

// createTempDir creates a temporary directory and registers a cleanup
// function to remove it after the test.
func createTempDir(t testing.TB, prefix string) string {
	tempDir, err := os.MkdirTemp("", prefix)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	return tempDir
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(Options{})
	require.NoError(t, err)
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(Options{})
	require.NoError(t, err)
	require.NotNil(t, engine)

	cfg := engine.Config()
	assert.Equal(t, rewrite.DefaultRuntimePath, cfg.RuntimePath)
	assert.Equal(t, "overflow", cfg.RuntimeName)
	assert.Equal(t, "err", cfg.ErrName)
	assert.Nil(t, engine.cache)
}

func TestNewEngineCustomRuntime(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(Options{RuntimePath: "example.com/num", ErrName: "failure"})
	require.NoError(t, err)

	cfg := engine.Config()
	assert.Equal(t, "example.com/num", cfg.RuntimePath)
	assert.Equal(t, "num", cfg.RuntimeName)
	assert.Equal(t, "failure", cfg.ErrName)
}

func TestRunSourceRewrite(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	src := `package main

func calc(a, b int) int {
	//math:checked
	c := a + b
	return c
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, rewrite.RuleRewrite, issue.Rule)
	assert.Equal(t, "rewrite", issue.Category)
	assert.Equal(t, tt.SeverityInfo, issue.Severity)
	assert.Equal(t, "1 arithmetic operation rewritten under the checked policy", issue.Message)
	assert.Equal(t, "c := overflow.MustAdd(a, b)", issue.Suggestion)
	assert.Equal(t, []string{rewrite.DefaultRuntimePath}, issue.RequiredImports)
	assert.Equal(t, 5, issue.Start.Line)
	assert.Equal(t, 5, issue.End.Line)
	assert.True(t, issue.Rewritable())
}

func TestRunSourceOrdersIssuesByPosition(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	src := `package main

func calc(a, b int) (int, int) {
	//math:saturating
	lo := a - b
	//math:overflowing
	hi := a + b
	return lo, hi
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, 5, issues[0].Start.Line)
	assert.Equal(t, "lo := overflow.SatSub(a, b)", issues[0].Suggestion)
	assert.Equal(t, 7, issues[1].Start.Line)
	assert.Equal(t, "hi := overflow.WrapAdd(a, b)", issues[1].Suggestion)
}

func TestRunSourceWithoutDirectives(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	src := `package main

func calc(a, b int) int {
	return a + b
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRunSourceMalformedDirective(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	src := `package main

func calc(a, b int) int {
	// math:checked
	return a + b
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	assert.Equal(t, directive.RuleName, issues[0].Rule)
	assert.Equal(t, tt.SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "remove the space after //")
	assert.False(t, issues[0].Rewritable())
}

func TestRunSourceUnusedDirective(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	src := `package main

func calc() {
	//math:checked

	x := 1
	_ = x
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	assert.Equal(t, directive.RuleName, issues[0].Rule)
	assert.Equal(t, tt.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "//math:checked directive is not followed by a statement", issues[0].Message)
	assert.Equal(t, 4, issues[0].Start.Line)
}

func TestRunSourceContractViolation(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	src := `package main

//math:propagating
func double(x int) int {
	return x * 2
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, rewrite.RuleContract, issue.Rule)
	assert.Equal(t, tt.SeverityError, issue.Severity)
	assert.Equal(t, "propagating policy requires the function to return an error as its final result", issue.Message)
	assert.Contains(t, issue.Note, "double")
	assert.Equal(t, 3, issue.Start.Line)
}

func TestRunSourceZeroDivisorAfterRewrite(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	src := `package main

func quot(a int) int {
	d := 0
	//math:checked
	return a / d
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, rewrite.RuleRewrite, issues[0].Rule)
	assert.Equal(t, "return overflow.MustDiv(a, d)", issues[0].Suggestion)

	advisory := issues[1]
	assert.Equal(t, checks.RuleZeroDivisor, advisory.Rule)
	assert.Equal(t, tt.SeverityError, advisory.Severity)
	assert.Equal(t, "the divisor of overflow.MustDiv is always zero", advisory.Message)
	assert.Equal(t, 6, advisory.Start.Line)
}

func TestRunSourceZeroDivisorOnExistingCalls(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	// No directives at all: the advisory still covers calls from an
	// earlier rewrite.
	src := `package main

import "github.com/makcandrov/math-blocks/overflow"

func quot(a int) (int, error) {
	d := 0
	return overflow.TryDiv(a, d), nil
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	assert.Equal(t, checks.RuleZeroDivisor, issues[0].Rule)
	assert.Equal(t, "the divisor of overflow.TryDiv is always zero", issues[0].Message)
}

func TestRunSourceParseError(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	_, err := engine.RunSource([]byte("package main\nfunc {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing file")
}

func TestEngineRunFile(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	tempDir := createTempDir(t, "engine_run")

	filename := filepath.Join(tempDir, "calc.go")
	src := "package main\n\nfunc calc(a, b int) int {\n\t//math:saturating\n\treturn a * b\n}\n"
	require.NoError(t, os.WriteFile(filename, []byte(src), 0o644))

	issues, err := engine.Run(filename)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	assert.Equal(t, filename, issues[0].Filename)
	assert.Equal(t, "return overflow.SatMul(a, b)", issues[0].Suggestion)
}

func TestEngineRunMissingFile(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	_, err := engine.Run(filepath.Join(createTempDir(t, "engine_missing"), "gone.go"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading file")
}

func TestEngineIgnorePath(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)
	tempDir := createTempDir(t, "engine_ignore")

	filename := filepath.Join(tempDir, "calc.go")
	src := "package main\n\nfunc calc(a, b int) int {\n\t//math:checked\n\treturn a + b\n}\n"
	require.NoError(t, os.WriteFile(filename, []byte(src), 0o644))

	engine.IgnorePath(tempDir)

	issues, err := engine.Run(filename)
	require.NoError(t, err)
	assert.Nil(t, issues)
}

func TestRegionMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		region rewrite.Region
		want   string
	}{
		{
			name:   "single operation",
			region: rewrite.Region{Policy: policy.Checked, Ops: 1},
			want:   "1 arithmetic operation rewritten under the checked policy",
		},
		{
			name:   "several operations",
			region: rewrite.Region{Policy: policy.Overflowing, Ops: 3},
			want:   "3 arithmetic operations rewritten under the overflowing policy",
		},
		{
			name:   "armed without operations",
			region: rewrite.Region{Policy: policy.Propagating, Armed: true},
			want:   "overflow errors will propagate through the enclosing function's error result",
		},
		{
			name:   "armed with operations",
			region: rewrite.Region{Policy: policy.Propagating, Ops: 2, Armed: true},
			want:   "2 arithmetic operations rewritten under the propagating policy",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, regionMessage(tc.region))
		})
	}
}

func TestSortIssues(t *testing.T) {
	t.Parallel()

	issues := []tt.Issue{
		{Rule: "b-rule", Start: pos(3, 1)},
		{Rule: "a-rule", Start: pos(3, 1)},
		{Rule: "c-rule", Start: pos(1, 9)},
		{Rule: "d-rule", Start: pos(1, 2)},
	}
	sortIssues(issues)

	assert.Equal(t, "d-rule", issues[0].Rule)
	assert.Equal(t, "c-rule", issues[1].Rule)
	assert.Equal(t, "a-rule", issues[2].Rule)
	assert.Equal(t, "b-rule", issues[3].Rule)
}

func TestReadSourceCode(t *testing.T) {
	t.Parallel()
	tempDir := createTempDir(t, "source_code_test")

	testFile := filepath.Join(tempDir, "test.go")
	content := "package main\n\nfunc main() {\n\tprintln(\"Hello, World!\")\n}"
	err := os.WriteFile(testFile, []byte(content), 0o644)
	require.NoError(t, err)

	sourceCode, err := ReadSourceCode(testFile)
	assert.NoError(t, err)
	assert.NotNil(t, sourceCode)
	assert.Len(t, sourceCode.Lines, 5)
	assert.Equal(t, "package main", sourceCode.Lines[0])
}

func BenchmarkRunSource(b *testing.B) {
	engine, err := NewEngine(Options{})
	if err != nil {
		b.Fatalf("failed to create engine: %v", err)
	}

	src := []byte(`package main

func calc(a, b int) (int, error) {
	//math:checked
	s := a + b
	//math:overflowing
	p := a * b
	//math:saturating
	d := s - p
	return d, nil
}
`)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.RunSource(src); err != nil {
			b.Fatalf("failed to run engine: %v", err)
		}
	}
}
