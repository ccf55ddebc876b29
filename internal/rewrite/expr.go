package rewrite

import (
	"go/ast"
	"go/token"

	"github.com/makcandrov/math-blocks/internal/policy"
)

// expr walks one expression tree, rewriting governed operator nodes under
// the active policy. Recursion runs bottom up so nested operands are in
// final form before the enclosing operator is rebuilt.
func (v *Visitor) expr(e ast.Expr) ast.Expr {
	switch ex := e.(type) {
	case *ast.BinaryExpr:
		ex.X = v.expr(ex.X)
		ex.Y = v.expr(ex.Y)
		return v.rewriteBinary(ex)
	case *ast.UnaryExpr:
		ex.X = v.expr(ex.X)
		return v.rewriteUnary(ex)
	case *ast.ParenExpr:
		ex.X = v.expr(ex.X)
	case *ast.CallExpr:
		return v.callExpr(ex)
	case *ast.StarExpr:
		ex.X = v.expr(ex.X)
	case *ast.SelectorExpr:
		ex.X = v.expr(ex.X)
	case *ast.IndexExpr:
		ex.X = v.expr(ex.X)
		ex.Index = v.expr(ex.Index)
	case *ast.IndexListExpr:
		// Multiple indices only appear as type arguments, which never
		// carry runtime arithmetic.
		ex.X = v.expr(ex.X)
	case *ast.SliceExpr:
		ex.X = v.expr(ex.X)
		if ex.Low != nil {
			ex.Low = v.expr(ex.Low)
		}
		if ex.High != nil {
			ex.High = v.expr(ex.High)
		}
		if ex.Max != nil {
			ex.Max = v.expr(ex.Max)
		}
	case *ast.TypeAssertExpr:
		ex.X = v.expr(ex.X)
	case *ast.CompositeLit:
		for i := range ex.Elts {
			ex.Elts[i] = v.expr(ex.Elts[i])
		}
	case *ast.KeyValueExpr:
		ex.Key = v.expr(ex.Key)
		ex.Value = v.expr(ex.Value)
	case *ast.FuncLit:
		v.funcLit(ex)
	}
	return e
}

func (v *Visitor) callExpr(call *ast.CallExpr) *ast.CallExpr {
	call.Fun = v.expr(call.Fun)
	for i := range call.Args {
		call.Args[i] = v.expr(call.Args[i])
	}
	return call
}

// rewriteBinary replaces the five governed binary operators. Comparisons,
// shifts, and the bitwise and boolean operators always keep their native
// meaning, as do operands spelled purely from literals, whose arithmetic
// the compiler evaluates and bounds-checks itself.
func (v *Visitor) rewriteBinary(e *ast.BinaryExpr) ast.Expr {
	if v.top() == policy.Identity || !policy.Governs(e.Op) {
		return e
	}
	if constShape(e.X) && constShape(e.Y) {
		return e
	}
	if call := v.binaryCall(e.Op, e.X, e.Y); call != nil {
		return call
	}
	return e
}

// rewriteUnary handles negation, the one governed unary form. Negated
// literals stay literals so untyped constants keep their kind.
func (v *Visitor) rewriteUnary(e *ast.UnaryExpr) ast.Expr {
	if e.Op != token.SUB || v.top() == policy.Identity {
		return e
	}
	if constShape(e.X) {
		return e
	}
	call := policy.NegCall(v.top(), v.cfg.RuntimeName, stripParens(e.X))
	if call == nil {
		return e
	}
	v.markOp()
	return call
}

// binaryCall builds the runtime replacement for `x op y` under the active
// policy, or nil when the operator keeps its native form.
func (v *Visitor) binaryCall(op token.Token, x, y ast.Expr) ast.Expr {
	call := policy.BinaryCall(v.top(), v.cfg.RuntimeName, op, stripParens(x), stripParens(y))
	if call != nil {
		v.markOp()
	}
	return call
}

// constShape reports whether e is spelled entirely from numeric literals,
// allowing sign prefixes and parentheses.
func constShape(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.BasicLit:
		return x.Kind == token.INT || x.Kind == token.FLOAT
	case *ast.ParenExpr:
		return constShape(x.X)
	case *ast.UnaryExpr:
		if x.Op == token.ADD || x.Op == token.SUB {
			return constShape(x.X)
		}
	}
	return false
}

// stripParens drops grouping that becomes redundant at argument position.
func stripParens(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
