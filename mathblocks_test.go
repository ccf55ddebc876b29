package mathblocks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecked(t *testing.T) {
	t.Parallel()
	out, err := Checked("c := a + b")
	require.NoError(t, err)
	assert.Equal(t, "c := overflow.MustAdd(a, b)", out)
}

func TestCheckedMultipleStatements(t *testing.T) {
	t.Parallel()
	src := `sum := a + b
diff := a - b
prod := sum * diff`

	out, err := Checked(src)
	require.NoError(t, err)

	expected := `sum := overflow.MustAdd(a, b)
diff := overflow.MustSub(a, b)
prod := overflow.MustMul(sum, diff)`
	assert.Equal(t, expected, out)
}

func TestCheckedNestedDefaultResets(t *testing.T) {
	t.Parallel()
	src := `a := x + y
//math:default
b := a + 1`

	out, err := Checked(src)
	require.NoError(t, err)

	expected := `a := overflow.MustAdd(x, y)
//math:default
b := a + 1`
	assert.Equal(t, expected, out)
}

func TestOverflowing(t *testing.T) {
	t.Parallel()
	out, err := Overflowing("x *= 3")
	require.NoError(t, err)
	assert.Equal(t, "x = overflow.WrapMul(x, 3)", out)
}

func TestSaturating(t *testing.T) {
	t.Parallel()
	out, err := Saturating("total++")
	require.NoError(t, err)
	assert.Equal(t, "total = overflow.SatAdd(total, 1)", out)
}

func TestPropagating(t *testing.T) {
	t.Parallel()
	out, err := Propagating("x = a * b")
	require.NoError(t, err)

	expected := `defer overflow.Recover(&err)
x = overflow.TryMul(a, b)`
	assert.Equal(t, expected, out)
}

func TestDefaultIsIdentity(t *testing.T) {
	t.Parallel()
	src := "c  :=  a+b // odd spacing survives"
	out, err := Default(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestDefaultDoesNotParse(t *testing.T) {
	t.Parallel()
	src := "this is not Go at all @@"
	out, err := Default(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestSnippetWithoutArithmeticIsUnchanged(t *testing.T) {
	t.Parallel()
	src := "mask := flags | pending"
	out, err := Checked(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestExpandByPolicyName(t *testing.T) {
	t.Parallel()
	out, err := Expand("c := a + b", "checked", Config{})
	require.NoError(t, err)
	assert.Equal(t, "c := overflow.MustAdd(a, b)", out)
}

func TestExpandCustomRuntime(t *testing.T) {
	t.Parallel()
	out, err := Expand("c := a + b", "checked", Config{Runtime: "example.com/num"})
	require.NoError(t, err)
	assert.Equal(t, "c := num.MustAdd(a, b)", out)
}

func TestExpandCustomErrName(t *testing.T) {
	t.Parallel()
	out, err := Expand("x = a - b", "propagating", Config{ErrName: "failure"})
	require.NoError(t, err)

	expected := `defer overflow.Recover(&failure)
x = overflow.TrySub(a, b)`
	assert.Equal(t, expected, out)
}

func TestExpandUnknownPolicy(t *testing.T) {
	t.Parallel()
	_, err := Expand("c := a + b", "clamped", Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown policy "clamped"`)
}

func TestCheckedParseErrorIsDiagnostic(t *testing.T) {
	t.Parallel()
	_, err := Checked("c := (a + b")
	require.Error(t, err)

	var diag *DiagnosticError
	require.ErrorAs(t, err, &diag)
	require.NotEmpty(t, diag.Issues)
	assert.Equal(t, "syntax", diag.Issues[0].Rule)
	assert.Equal(t, 1, diag.Issues[0].Start.Line)
}

func TestPropagatingNestedLiteralContract(t *testing.T) {
	t.Parallel()
	// A literal without an error result cannot satisfy propagation; the
	// snippet is rejected rather than half rewritten.
	src := `go func() {
	x = a + b
}()`

	_, err := Propagating(src)
	require.Error(t, err)

	var diag *DiagnosticError
	require.ErrorAs(t, err, &diag)
	require.NotEmpty(t, diag.Issues)
	assert.Equal(t, "math-contract", diag.Issues[0].Rule)
}

func TestDiagnosticErrorIsError(t *testing.T) {
	t.Parallel()
	_, err := Checked("c := (a + b")
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*DiagnosticError)))
	assert.Regexp(t, `^\d+:\d+: `, err.Error())
}
