// Package checks holds advisory analyses that run after the rewriting
// pass, over the transformed syntax tree.
package checks

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"

	"golang.org/x/tools/go/analysis"

	"github.com/makcandrov/math-blocks/internal/analysis/lattice"
	"github.com/makcandrov/math-blocks/internal/policy"
	"github.com/makcandrov/math-blocks/internal/types"
)

// RuleZeroDivisor tags advisories about checked divisions whose divisor a
// straight-line reading resolves to zero or maybe zero.
const RuleZeroDivisor = "zero-divisor"

// checkedDivisors maps the runtime functions that abort or propagate on a
// zero divisor to the argument position of the divisor. The wrapping and
// saturating families keep Go's native behavior and stay out of scope.
var checkedDivisors = map[string]int{
	"MustDiv": 1,
	"MustRem": 1,
	"TryDiv":  1,
	"TryRem":  1,
}

type finding struct {
	call    *ast.CallExpr
	divisor ast.Expr
	callee  string
	kind    lattice.Zeroness
}

// DetectZeroDivisors reports Must and Try divisions whose divisor is
// provably zero (error) or only maybe zero (warning). Divisors the
// analysis cannot track stay silent.
func DetectZeroDivisors(filename string, file *ast.File, fset *token.FileSet, runtimeName string) []types.Issue {
	var issues []types.Issue
	for _, f := range findZeroDivisors(file, runtimeName) {
		severity := types.SeverityWarning
		msg := fmt.Sprintf("the divisor of %s.%s may be zero", runtimeName, f.callee)
		if f.kind == lattice.Zero {
			severity = types.SeverityError
			msg = fmt.Sprintf("the divisor of %s.%s is always zero", runtimeName, f.callee)
		}
		issues = append(issues, types.Issue{
			Rule:     RuleZeroDivisor,
			Category: "divide-by-zero",
			Filename: filename,
			Message:  msg,
			Note:     divisorNote(f.callee),
			Severity: severity,
			Start:    positionOf(fset, f.call.Pos(), f.divisor.Pos()),
			End:      positionOf(fset, f.call.End(), f.divisor.End(), f.divisor.Pos()),
		})
	}
	return issues
}

func divisorNote(callee string) string {
	if callee == "TryDiv" || callee == "TryRem" {
		return "this call makes the enclosing function return ErrDivisionByZero"
	}
	return "this call panics when the divisor is zero"
}

// positionOf returns the first valid position among the candidates.
// Rewritten call nodes carry no position of their own, but their operands
// keep the positions of the original source.
func positionOf(fset *token.FileSet, candidates ...token.Pos) token.Position {
	for _, p := range candidates {
		if p.IsValid() {
			return fset.Position(p)
		}
	}
	return token.Position{}
}

// Analyzer exposes the check as a vet-style analysis driving the detector
// over every file of a pass. It assumes the canonical runtime identifier.
var Analyzer = &analysis.Analyzer{
	Name: "zerodivisor",
	Doc:  "report checked divisions whose divisor is provably or possibly zero",
	Run:  runZeroDivisor,
}

func runZeroDivisor(pass *analysis.Pass) (any, error) {
	for _, file := range pass.Files {
		for _, f := range findZeroDivisors(file, "overflow") {
			pos := f.call.Pos()
			if !pos.IsValid() {
				pos = f.divisor.Pos()
			}
			if f.kind == lattice.Zero {
				pass.Reportf(pos, "the divisor of overflow.%s is always zero", f.callee)
			} else {
				pass.Reportf(pos, "the divisor of overflow.%s may be zero", f.callee)
			}
		}
	}
	return nil, nil
}

func findZeroDivisors(file *ast.File, runtimeName string) []finding {
	w := &divisorWalk{runtime: runtimeName}
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Body != nil {
			w.stmts(fn.Body.List, lattice.State{})
		}
	}
	return w.findings
}

// divisorWalk interprets statement lists in source order. Branches fork
// the state and join afterwards; loops forget whatever the body can
// reassign instead of iterating to a fixed point.
type divisorWalk struct {
	runtime  string
	findings []finding
}

func (w *divisorWalk) stmts(list []ast.Stmt, state lattice.State) lattice.State {
	for _, s := range list {
		state = w.stmt(s, state)
	}
	return state
}

func (w *divisorWalk) stmt(s ast.Stmt, state lattice.State) lattice.State {
	switch st := s.(type) {
	case *ast.AssignStmt:
		for _, rhs := range st.Rhs {
			w.scan(rhs, state)
		}
		for _, lhs := range st.Lhs {
			w.scan(lhs, state)
		}
		return transferAssign(st, state)
	case *ast.DeclStmt:
		if gen, ok := st.Decl.(*ast.GenDecl); ok {
			for _, spec := range gen.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					for _, value := range vs.Values {
						w.scan(value, state)
					}
				}
			}
		}
		return transferDecl(st, state)
	case *ast.IncDecStmt:
		w.scan(st.X, state)
		return transferIncDec(st, state)
	case *ast.ExprStmt:
		w.scan(st.X, state)
	case *ast.ReturnStmt:
		for _, r := range st.Results {
			w.scan(r, state)
		}
	case *ast.SendStmt:
		w.scan(st.Chan, state)
		w.scan(st.Value, state)
	case *ast.DeferStmt:
		w.scan(st.Call, state)
	case *ast.GoStmt:
		w.scan(st.Call, state)
	case *ast.LabeledStmt:
		return w.stmt(st.Stmt, state)
	case *ast.BlockStmt:
		return w.stmts(st.List, state)
	case *ast.IfStmt:
		return w.ifStmt(st, state)
	case *ast.ForStmt:
		return w.forStmt(st, state)
	case *ast.RangeStmt:
		return w.rangeStmt(st, state)
	case *ast.SwitchStmt:
		return w.switchStmt(st, state)
	case *ast.TypeSwitchStmt:
		return w.typeSwitchStmt(st, state)
	case *ast.SelectStmt:
		return w.selectStmt(st, state)
	}
	return state
}

func (w *divisorWalk) ifStmt(st *ast.IfStmt, state lattice.State) lattice.State {
	if st.Init != nil {
		state = w.stmt(st.Init, state)
	}
	w.scan(st.Cond, state)
	thenState := w.stmts(st.Body.List, refineCond(st.Cond, state.Clone(), true))
	elseState := refineCond(st.Cond, state.Clone(), false)
	if st.Else != nil {
		elseState = w.stmt(st.Else, elseState)
	}
	return thenState.Join(elseState)
}

func (w *divisorWalk) forStmt(st *ast.ForStmt, state lattice.State) lattice.State {
	if st.Init != nil {
		state = w.stmt(st.Init, state)
	}
	loop := havoc(state, st.Body, st.Post)
	if st.Cond != nil {
		w.scan(st.Cond, loop)
	}
	w.stmts(st.Body.List, loop.Clone())
	if st.Post != nil {
		w.stmt(st.Post, loop.Clone())
	}
	return loop
}

func (w *divisorWalk) rangeStmt(st *ast.RangeStmt, state lattice.State) lattice.State {
	w.scan(st.X, state)
	loop := havoc(state, st.Body)
	for _, e := range []ast.Expr{st.Key, st.Value} {
		if id, ok := e.(*ast.Ident); ok && id.Name != "_" {
			loop.Set(id.Name, lattice.Top)
		}
	}
	w.stmts(st.Body.List, loop.Clone())
	return loop
}

func (w *divisorWalk) switchStmt(st *ast.SwitchStmt, state lattice.State) lattice.State {
	if st.Init != nil {
		state = w.stmt(st.Init, state)
	}
	if st.Tag != nil {
		w.scan(st.Tag, state)
	}
	out := state.Clone()
	for _, clause := range st.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		for _, e := range cc.List {
			w.scan(e, state)
		}
		out = out.Join(w.stmts(cc.Body, state.Clone()))
	}
	return out
}

func (w *divisorWalk) typeSwitchStmt(st *ast.TypeSwitchStmt, state lattice.State) lattice.State {
	if st.Init != nil {
		state = w.stmt(st.Init, state)
	}
	if st.Assign != nil {
		state = w.stmt(st.Assign, state)
	}
	out := state.Clone()
	for _, clause := range st.Body.List {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		out = out.Join(w.stmts(cc.Body, state.Clone()))
	}
	return out
}

func (w *divisorWalk) selectStmt(st *ast.SelectStmt, state lattice.State) lattice.State {
	out := state.Clone()
	for _, clause := range st.Body.List {
		cc, ok := clause.(*ast.CommClause)
		if !ok {
			continue
		}
		branch := state.Clone()
		if cc.Comm != nil {
			branch = w.stmt(cc.Comm, branch)
		}
		out = out.Join(w.stmts(cc.Body, branch))
	}
	return out
}

// scan reports governed division calls found anywhere inside one
// expression, evaluated against the state in force when the statement
// runs. Function literal bodies run on their own timeline and restart
// from an empty state.
func (w *divisorWalk) scan(n ast.Node, state lattice.State) {
	if n == nil {
		return
	}
	ast.Inspect(n, func(x ast.Node) bool {
		switch e := x.(type) {
		case *ast.FuncLit:
			w.stmts(e.Body.List, lattice.State{})
			return false
		case *ast.CallExpr:
			w.call(e, state)
		}
		return true
	})
}

func (w *divisorWalk) call(call *ast.CallExpr, state lattice.State) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != w.runtime {
		return
	}
	idx, ok := checkedDivisors[sel.Sel.Name]
	if !ok || idx >= len(call.Args) {
		return
	}
	divisor := call.Args[idx]
	kind := evalExpr(divisor, state)
	if kind != lattice.Zero && kind != lattice.MaybeZero {
		return
	}
	w.findings = append(w.findings, finding{
		call:    call,
		divisor: divisor,
		callee:  sel.Sel.Name,
		kind:    kind,
	})
}

// havoc forgets every variable the given subtrees can reassign, keeping
// the walk sound without a fixed-point iteration.
func havoc(state lattice.State, nodes ...ast.Node) lattice.State {
	out := state.Clone()
	for _, n := range nodes {
		if n == nil {
			continue
		}
		ast.Inspect(n, func(x ast.Node) bool {
			switch st := x.(type) {
			case *ast.AssignStmt:
				for _, lhs := range st.Lhs {
					if id, ok := lhs.(*ast.Ident); ok {
						out.Set(id.Name, lattice.Top)
					}
				}
			case *ast.IncDecStmt:
				if id, ok := st.X.(*ast.Ident); ok {
					out.Set(id.Name, lattice.Top)
				}
			case *ast.ValueSpec:
				for _, name := range st.Names {
					out.Set(name.Name, lattice.Top)
				}
			}
			return true
		})
	}
	return out
}

func transferAssign(st *ast.AssignStmt, state lattice.State) lattice.State {
	out := state.Clone()
	compoundOp, compound := policy.AssignOp(st.Tok)
	for i, lhs := range st.Lhs {
		id, ok := lhs.(*ast.Ident)
		if !ok || id.Name == "_" {
			continue
		}
		value := lattice.Top
		if len(st.Rhs) == len(st.Lhs) {
			value = evalExpr(st.Rhs[i], state)
		}
		switch {
		case st.Tok == token.ASSIGN || st.Tok == token.DEFINE:
		case compound:
			value = combineBinary(compoundOp, state.Get(id.Name), value)
		default:
			// Shift and bitwise compound assignments.
			value = lattice.Top
		}
		out.Set(id.Name, value)
	}
	return out
}

func transferDecl(st *ast.DeclStmt, state lattice.State) lattice.State {
	gen, ok := st.Decl.(*ast.GenDecl)
	if !ok || gen.Tok != token.VAR {
		return state
	}
	out := state.Clone()
	for _, spec := range gen.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			value := lattice.Zero // var d int starts at the zero value
			if len(vs.Values) > 0 {
				value = lattice.Top
				if i < len(vs.Values) && len(vs.Values) == len(vs.Names) {
					value = evalExpr(vs.Values[i], state)
				}
			}
			out.Set(name.Name, value)
		}
	}
	return out
}

func transferIncDec(st *ast.IncDecStmt, state lattice.State) lattice.State {
	id, ok := st.X.(*ast.Ident)
	if !ok || id.Name == "_" {
		return state
	}
	out := state.Clone()
	out.Set(id.Name, incDecStep(state.Get(id.Name)))
	return out
}

// incDecStep abstracts adding or subtracting one: a zero value turns
// nonzero, anything else can land anywhere.
func incDecStep(z lattice.Zeroness) lattice.Zeroness {
	switch z {
	case lattice.Zero:
		return lattice.NonZero
	case lattice.Bottom:
		return lattice.Bottom
	default:
		return lattice.MaybeZero
	}
}

func evalExpr(expr ast.Expr, state lattice.State) lattice.Zeroness {
	switch e := expr.(type) {
	case *ast.Ident:
		return state.Get(e.Name)
	case *ast.BasicLit:
		if isZeroLiteral(e) {
			return lattice.Zero
		}
		if isNumericLiteral(e) {
			return lattice.NonZero
		}
		return lattice.Top
	case *ast.UnaryExpr:
		if e.Op == token.ADD || e.Op == token.SUB {
			return evalExpr(e.X, state)
		}
		return lattice.Top
	case *ast.BinaryExpr:
		return combineBinary(e.Op, evalExpr(e.X, state), evalExpr(e.Y, state))
	case *ast.ParenExpr:
		return evalExpr(e.X, state)
	default:
		return lattice.Top
	}
}

func combineBinary(op token.Token, lhs, rhs lattice.Zeroness) lattice.Zeroness {
	if lhs == lattice.Bottom || rhs == lattice.Bottom {
		return lattice.Bottom
	}
	if lhs == lattice.Top || rhs == lattice.Top {
		return lattice.Top
	}
	if lhs == lattice.MaybeZero || rhs == lattice.MaybeZero {
		if op == token.MUL && (lhs == lattice.Zero || rhs == lattice.Zero) {
			return lattice.Zero
		}
		return lattice.MaybeZero
	}
	switch op {
	case token.MUL:
		if lhs == lattice.Zero || rhs == lattice.Zero {
			return lattice.Zero
		}
		return lattice.NonZero
	case token.ADD, token.SUB:
		if lhs == lattice.Zero {
			return rhs
		}
		if rhs == lattice.Zero {
			return lhs
		}
		// Two nonzero values can cancel out.
		return lattice.MaybeZero
	case token.QUO, token.REM:
		return lattice.MaybeZero
	default:
		return lattice.MaybeZero
	}
}

// refineCond narrows what a comparison against zero proves about a
// variable on the taken or fallthrough branch.
func refineCond(cond ast.Expr, state lattice.State, taken bool) lattice.State {
	name, op, ok := zeroComparison(cond)
	if !ok {
		return state
	}
	var constraint lattice.Zeroness
	switch op {
	case token.NEQ:
		constraint = lattice.NonZero
		if !taken {
			constraint = lattice.Zero
		}
	case token.EQL:
		constraint = lattice.Zero
		if !taken {
			constraint = lattice.NonZero
		}
	case token.GTR, token.LSS:
		constraint = lattice.NonZero
		if !taken {
			constraint = lattice.MaybeZero
		}
	default:
		return state
	}
	state.Set(name, state.Get(name).Meet(constraint))
	return state
}

// zeroComparison matches `v op 0` and `0 op v`, normalizing the operator
// to the variable-on-the-left form.
func zeroComparison(expr ast.Expr) (string, token.Token, bool) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return zeroComparison(e.X)
	case *ast.BinaryExpr:
		if id, ok := e.X.(*ast.Ident); ok && isZeroExpr(e.Y) {
			return id.Name, e.Op, true
		}
		if id, ok := e.Y.(*ast.Ident); ok && isZeroExpr(e.X) {
			return id.Name, flipOp(e.Op), true
		}
	}
	return "", token.ILLEGAL, false
}

func flipOp(op token.Token) token.Token {
	switch op {
	case token.LSS:
		return token.GTR
	case token.GTR:
		return token.LSS
	default:
		return op
	}
}

func isZeroExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return isZeroLiteral(e)
	case *ast.UnaryExpr:
		if e.Op == token.ADD || e.Op == token.SUB {
			return isZeroExpr(e.X)
		}
	}
	return false
}

func isZeroLiteral(lit *ast.BasicLit) bool {
	if !isNumericLiteral(lit) {
		return false
	}
	val := constant.MakeFromLiteral(lit.Value, lit.Kind, 0)
	return val.Kind() != constant.Unknown && constant.Sign(val) == 0
}

func isNumericLiteral(lit *ast.BasicLit) bool {
	return lit.Kind == token.INT || lit.Kind == token.FLOAT
}
