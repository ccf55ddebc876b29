package rewrite

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/makcandrov/math-blocks/internal/directive"
	"github.com/makcandrov/math-blocks/internal/policy"
)

// funcScope tracks what the innermost function offers a propagating
// region: the name of its error result and whether a Recover defer
// already dominates the current position.
type funcScope struct {
	errName string
	planted bool
}

func newFuncScope(ft *ast.FuncType) *funcScope {
	fs := &funcScope{}
	if f, ok := errorResult(ft); ok && len(f.Names) > 0 {
		if name := f.Names[len(f.Names)-1].Name; name != "_" {
			fs.errName = name
		}
	}
	return fs
}

// errorResult returns the final result field when its type is spelled
// `error`.
func errorResult(ft *ast.FuncType) (*ast.Field, bool) {
	if ft == nil || ft.Results == nil || len(ft.Results.List) == 0 {
		return nil, false
	}
	f := ft.Results.List[len(ft.Results.List)-1]
	id, ok := f.Type.(*ast.Ident)
	if !ok || id.Name != "error" {
		return nil, false
	}
	return f, true
}

// armFunc prepares a whole function declaration for propagation: the
// final result must be an error, unnamed results get names, and a Recover
// defer lands at the top of the body.
func (v *Visitor) armFunc(d directive.Directive, fn *ast.FuncDecl, fs *funcScope) bool {
	if fs.errName == "" {
		name, ok := v.nameErrorResult(fn.Type)
		if !ok {
			v.contractIssue(d.Pos,
				"propagating policy requires the function to return an error as its final result",
				fmt.Sprintf("add an error result to %s or pick another policy", fn.Name.Name))
			return false
		}
		fs.errName = name
		v.markArmed()
	}
	v.plant(fn.Body, fs)
	fs.planted = true
	return true
}

// propagatingStmt rewrites one directive-governed statement under the
// propagating policy. The enclosing function must already expose a named
// error result; the rewrite cannot reach its signature from here.
func (v *Visitor) propagatingStmt(d directive.Directive, s ast.Stmt) ast.Stmt {
	if isRecoverDefer(s, v.cfg.RuntimeName) {
		// Re-running over already rewritten output: the defer planted by
		// an earlier pass now sits directly under the directive.
		return v.walkStmt(s)
	}
	fs := v.curFunc()
	if fs == nil || fs.errName == "" {
		v.contractIssue(d.Pos,
			"propagating policy requires the enclosing function to have a named error as its final result",
			"name the error result, or move the directive onto the function declaration")
		return s
	}
	if block, ok := s.(*ast.BlockStmt); ok {
		planted := fs.planted
		fs.planted = true
		v.stmtsInPlace(block)
		fs.planted = planted
		if !planted {
			v.plant(block, fs)
		}
		return block
	}
	out := v.walkStmt(s)
	if !fs.planted {
		v.pending = append(v.pending, v.recoverDefer(fs.errName))
		v.markArmed()
	}
	return out
}

// funcLit gives a function literal its own scope. Policies cross into the
// body lexically, so a literal inside a propagating region must provide
// its own failure channel and its own Recover; an escaping literal can
// run long after the enclosing function returned.
func (v *Visitor) funcLit(lit *ast.FuncLit) {
	fs := newFuncScope(lit.Type)
	if v.top() == policy.Propagating {
		if fs.errName == "" {
			name, ok := v.nameErrorResult(lit.Type)
			if !ok {
				v.contractIssue(v.fset.Position(lit.Pos()),
					"propagating policy requires the function literal to return an error as its final result",
					"add an error result to the literal or reset the policy around it")
				v.funcs = append(v.funcs, fs)
				v.push(policy.Identity)
				v.stmtsInPlace(lit.Body)
				v.pop()
				v.funcs = v.funcs[:len(v.funcs)-1]
				return
			}
			fs.errName = name
			v.markArmed()
		}
		v.plant(lit.Body, fs)
		fs.planted = true
	}
	v.funcs = append(v.funcs, fs)
	v.stmtsInPlace(lit.Body)
	v.funcs = v.funcs[:len(v.funcs)-1]
}

// plant prepends `defer runtime.Recover(&err)` unless the block already
// starts with one.
func (v *Visitor) plant(body *ast.BlockStmt, fs *funcScope) {
	if hasRecoverDefer(body.List, v.cfg.RuntimeName) {
		return
	}
	body.List = append([]ast.Stmt{v.recoverDefer(fs.errName)}, body.List...)
	v.markArmed()
}

// nameErrorResult names the results of a signature whose final result is
// an unnamed or blank error, returning the error identifier now in force.
func (v *Visitor) nameErrorResult(ft *ast.FuncType) (string, bool) {
	f, ok := errorResult(ft)
	if !ok {
		return "", false
	}
	name := v.freshErrName(ft)
	if len(f.Names) > 0 {
		f.Names[len(f.Names)-1] = ast.NewIdent(name)
		return name, true
	}
	for _, field := range ft.Results.List {
		if field != f {
			field.Names = []*ast.Ident{ast.NewIdent("_")}
		}
	}
	f.Names = []*ast.Ident{ast.NewIdent(name)}
	return name, true
}

// freshErrName returns the configured error identifier, suffixed when the
// signature already uses that name.
func (v *Visitor) freshErrName(ft *ast.FuncType) string {
	used := map[string]bool{}
	collect := func(fl *ast.FieldList) {
		if fl == nil {
			return
		}
		for _, f := range fl.List {
			for _, n := range f.Names {
				used[n.Name] = true
			}
		}
	}
	collect(ft.Params)
	collect(ft.Results)
	name := v.cfg.ErrName
	for i := 1; used[name]; i++ {
		name = fmt.Sprintf("%s%d", v.cfg.ErrName, i)
	}
	return name
}

// recoverDefer builds `defer runtime.Recover(&name)`.
func (v *Visitor) recoverDefer(name string) *ast.DeferStmt {
	return &ast.DeferStmt{
		Call: &ast.CallExpr{
			Fun: &ast.SelectorExpr{
				X:   ast.NewIdent(v.cfg.RuntimeName),
				Sel: ast.NewIdent("Recover"),
			},
			Args: []ast.Expr{&ast.UnaryExpr{Op: token.AND, X: ast.NewIdent(name)}},
		},
	}
}

func hasRecoverDefer(list []ast.Stmt, runtimeName string) bool {
	return len(list) > 0 && isRecoverDefer(list[0], runtimeName)
}

func isRecoverDefer(s ast.Stmt, runtimeName string) bool {
	d, ok := s.(*ast.DeferStmt)
	if !ok {
		return false
	}
	sel, ok := d.Call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == runtimeName && sel.Sel.Name == "Recover"
}
