// Package policy defines the overflow policies a directive can put in
// force and maps governed operators to the runtime calls that implement
// each policy.
package policy

import (
	"go/ast"
	"go/token"
)

// Policy selects how governed arithmetic inside a region is rewritten.
type Policy int

const (
	// Identity leaves operators untouched. It sits at the bottom of every
	// scope stack and is what the "default" directive restores.
	Identity Policy = iota
	// Checked rewrites to the Must family, which panics on any
	// unrepresentable result.
	Checked
	// Overflowing rewrites to the Wrap family, keeping two's-complement
	// results.
	Overflowing
	// Saturating rewrites to the Sat family, clamping to the operand
	// type's range.
	Saturating
	// Propagating rewrites to the Try family and converts failures into
	// an error return through a deferred overflow.Recover.
	Propagating
)

// Names lists the accepted directive arguments in display order.
var Names = []string{"checked", "overflowing", "saturating", "propagating", "default"}

// Parse maps a directive argument to its policy. The "default" argument
// parses to Identity.
func Parse(name string) (Policy, bool) {
	switch name {
	case "checked":
		return Checked, true
	case "overflowing":
		return Overflowing, true
	case "saturating":
		return Saturating, true
	case "propagating":
		return Propagating, true
	case "default":
		return Identity, true
	}
	return Identity, false
}

func (p Policy) String() string {
	switch p {
	case Checked:
		return "checked"
	case Overflowing:
		return "overflowing"
	case Saturating:
		return "saturating"
	case Propagating:
		return "propagating"
	default:
		return "default"
	}
}

// prefix returns the runtime function family implementing p.
func (p Policy) prefix() string {
	switch p {
	case Checked:
		return "Must"
	case Overflowing:
		return "Wrap"
	case Saturating:
		return "Sat"
	case Propagating:
		return "Try"
	default:
		return ""
	}
}

// binarySuffix covers the five governed binary operators. Shifts, bitwise
// operators, comparisons and boolean operators always keep their native
// meaning.
var binarySuffix = map[token.Token]string{
	token.ADD: "Add",
	token.SUB: "Sub",
	token.MUL: "Mul",
	token.QUO: "Div",
	token.REM: "Rem",
}

// Governs reports whether op is one of the rewritten binary operators.
func Governs(op token.Token) bool {
	_, ok := binarySuffix[op]
	return ok
}

// FuncName returns the runtime function implementing op under p, or ""
// when the operator keeps its native form.
func FuncName(p Policy, op token.Token) string {
	pre := p.prefix()
	if pre == "" {
		return ""
	}
	suf, ok := binarySuffix[op]
	if !ok {
		return ""
	}
	return pre + suf
}

// NegFuncName returns the runtime function for unary minus under p, or "".
func NegFuncName(p Policy) string {
	if pre := p.prefix(); pre != "" {
		return pre + "Neg"
	}
	return ""
}

// BinaryCall builds the replacement pkg.Func(x, y) for `x op y` under p.
// It returns nil when the operator keeps its native form.
func BinaryCall(p Policy, pkg string, op token.Token, x, y ast.Expr) ast.Expr {
	name := FuncName(p, op)
	if name == "" {
		return nil
	}
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(name)},
		Args: []ast.Expr{x, y},
	}
}

// NegCall builds the replacement pkg.Func(x) for `-x` under p, or nil.
func NegCall(p Policy, pkg string, x ast.Expr) ast.Expr {
	name := NegFuncName(p)
	if name == "" {
		return nil
	}
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(name)},
		Args: []ast.Expr{x},
	}
}

// AssignOp maps a compound assignment token to the binary operator it
// applies, for the governed operators only.
func AssignOp(tok token.Token) (token.Token, bool) {
	switch tok {
	case token.ADD_ASSIGN:
		return token.ADD, true
	case token.SUB_ASSIGN:
		return token.SUB, true
	case token.MUL_ASSIGN:
		return token.MUL, true
	case token.QUO_ASSIGN:
		return token.QUO, true
	case token.REM_ASSIGN:
		return token.REM, true
	}
	return token.ILLEGAL, false
}
