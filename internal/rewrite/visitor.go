// Package rewrite implements the arithmetic rewriting pass. A visitor
// walks statements depth first under a stack of overflow policies and
// replaces each governed operator with a call into the runtime package.
// Directives push a policy for exactly the extent of the statement they
// precede; the stack bottom is always the identity policy, under which
// every operator keeps its native meaning.
package rewrite

import (
	"go/ast"
	"go/token"
	"path"

	"github.com/makcandrov/math-blocks/internal/directive"
	"github.com/makcandrov/math-blocks/internal/policy"
	"github.com/makcandrov/math-blocks/internal/types"
)

// Rule names attached to issues produced by the pass.
const (
	RuleRewrite  = "math-rewrite"
	RuleContract = "math-contract"
)

// DefaultRuntimePath is the import path of the bundled arithmetic runtime.
const DefaultRuntimePath = "github.com/makcandrov/math-blocks/overflow"

// DefaultErrName is the identifier used when the pass has to name a
// previously unnamed error result.
const DefaultErrName = "err"

// Config carries the identifiers the emitted code refers to.
type Config struct {
	RuntimePath string // import path of the runtime package
	RuntimeName string // package identifier used in emitted calls
	ErrName     string // identifier given to unnamed error results
}

// WithDefaults fills unset fields from the bundled runtime.
func (c Config) WithDefaults() Config {
	if c.RuntimePath == "" {
		c.RuntimePath = DefaultRuntimePath
	}
	if c.RuntimeName == "" {
		c.RuntimeName = path.Base(c.RuntimePath)
	}
	if c.ErrName == "" {
		c.ErrName = DefaultErrName
	}
	return c
}

// Region is one outermost directive-governed span the pass changed. Start
// and End hold the source extent of the original statement, so a fixer
// can splice the rendered Nodes over those lines.
type Region struct {
	Directive directive.Directive
	Policy    policy.Policy
	Nodes     []ast.Node // replacement nodes, emitted in order
	Start     token.Position
	End       token.Position
	Ops       int  // governed operators rewritten inside the region
	Armed     bool // a Recover defer or result rename happened

	changed bool
}

// Visitor rewrites one file. It is single use: construct with New, call
// File or Snippet once, then collect Regions and Issues.
type Visitor struct {
	fset    *token.FileSet
	ix      *directive.Index
	cfg     Config
	stack   []policy.Policy
	funcs   []*funcScope
	pending []ast.Stmt // statements to splice before the current one
	region  *Region
	regions []Region
	issues  []types.Issue
}

func New(fset *token.FileSet, ix *directive.Index, cfg Config) *Visitor {
	return &Visitor{
		fset:  fset,
		ix:    ix,
		cfg:   cfg.WithDefaults(),
		stack: []policy.Policy{policy.Identity},
	}
}

// File rewrites every directive-governed region of f in place and returns
// the regions that changed.
func (v *Visitor) File(f *ast.File) []Region {
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			v.funcDecl(d)
		case *ast.GenDecl:
			v.genDecl(d)
		}
	}
	return v.regions
}

// Snippet rewrites the body of the synthetic wrapper function used by the
// snippet entry points, with p governing every statement. Under the
// propagating policy the body is armed with a Recover defer addressed to
// the configured error name. Snippet reports whether anything changed.
func (v *Visitor) Snippet(fn *ast.FuncDecl, p policy.Policy) bool {
	fs := &funcScope{errName: v.cfg.ErrName}
	v.funcs = append(v.funcs, fs)
	v.region = &Region{Policy: p}

	if p == policy.Propagating {
		v.plant(fn.Body, fs)
		fs.planted = true
	}
	v.push(p)
	v.stmtsInPlace(fn.Body)
	v.pop()

	r := v.region
	v.region = nil
	v.funcs = v.funcs[:len(v.funcs)-1]
	return r.changed
}

// Regions returns the changed regions collected so far.
func (v *Visitor) Regions() []Region { return v.regions }

// Issues returns contract violations found during the pass.
func (v *Visitor) Issues() []types.Issue { return v.issues }

func (v *Visitor) funcDecl(fn *ast.FuncDecl) {
	if fn.Body == nil {
		return
	}
	fs := newFuncScope(fn.Type)
	v.funcs = append(v.funcs, fs)
	defer func() { v.funcs = v.funcs[:len(v.funcs)-1] }()

	d, ok := v.takeDirective(fn)
	if !ok {
		v.stmtsInPlace(fn.Body)
		return
	}
	v.funcRegion(d, fn, fs)
}

// funcRegion rewrites an entire function declaration under the policy of
// the directive sitting on its doc line. The region extends over the doc
// comment because rendering a declaration re-emits it.
func (v *Visitor) funcRegion(d directive.Directive, fn *ast.FuncDecl, fs *funcScope) {
	v.region = &Region{
		Directive: d,
		Policy:    d.Policy,
		Start:     v.fset.Position(declStart(fn.Doc, fn)),
		End:       v.fset.Position(fn.End()),
	}
	v.push(d.Policy)
	ok := true
	if d.Policy == policy.Propagating {
		ok = v.armFunc(d, fn, fs)
	}
	if ok {
		v.stmtsInPlace(fn.Body)
	}
	v.pop()

	r := v.region
	v.region = nil
	r.Nodes = append(r.Nodes, fn)
	if r.changed {
		v.regions = append(v.regions, *r)
	}
	if !ok {
		// The contract failed, so the function keeps native semantics,
		// but directives nested in its body still deserve their policies.
		v.stmtsInPlace(fn.Body)
	}
}

// genDecl handles directives on package-level declarations. Only var
// initializers can carry runtime arithmetic.
func (v *Visitor) genDecl(decl *ast.GenDecl) {
	if decl.Tok != token.VAR {
		return
	}
	d, ok := v.takeDirective(decl)
	if !ok {
		return
	}
	if d.Policy == policy.Propagating {
		v.contractIssue(d.Pos,
			"propagating policy needs an enclosing function to return from",
			"use checked, overflowing, or saturating on package-level variables")
		return
	}
	v.region = &Region{
		Directive: d,
		Policy:    d.Policy,
		Start:     v.fset.Position(declStart(decl.Doc, decl)),
		End:       v.fset.Position(decl.End()),
	}
	v.push(d.Policy)
	for _, spec := range decl.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i := range vs.Values {
			vs.Values[i] = v.expr(vs.Values[i])
		}
	}
	v.pop()

	r := v.region
	v.region = nil
	r.Nodes = append(r.Nodes, decl)
	if r.changed {
		v.regions = append(v.regions, *r)
	}
}

// stmt applies any directive governing s, then rewrites it under the
// active policy. The returned statement replaces s in its parent list.
func (v *Visitor) stmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}
	d, ok := v.takeDirective(s)
	if !ok {
		return v.walkStmt(s)
	}
	return v.policyStmt(d, s)
}

// policyStmt pushes the directive's policy for exactly the extent of s,
// restoring the enclosing policy afterwards. The outermost directive of a
// nest opens a Region recording the statement's original source extent.
func (v *Visitor) policyStmt(d directive.Directive, s ast.Stmt) ast.Stmt {
	opening := v.region == nil
	if opening {
		v.region = &Region{
			Directive: d,
			Policy:    d.Policy,
			Start:     v.fset.Position(s.Pos()),
			End:       v.fset.Position(s.End()),
		}
	}
	pendingMark := len(v.pending)

	v.push(d.Policy)
	var out ast.Stmt
	if d.Policy == policy.Propagating {
		out = v.propagatingStmt(d, s)
	} else {
		out = v.walkStmt(s)
	}
	v.pop()

	if opening {
		r := v.region
		v.region = nil
		for _, p := range v.pending[pendingMark:] {
			r.Nodes = append(r.Nodes, p)
		}
		r.Nodes = append(r.Nodes, out)
		if r.changed {
			v.regions = append(v.regions, *r)
		}
	}
	return out
}

func (v *Visitor) stmtsInPlace(b *ast.BlockStmt) {
	b.List = v.stmtList(b.List)
}

// stmtList rewrites a statement list, splicing in statements a rewrite
// needs to run first, such as a Recover defer in front of a propagating
// statement.
func (v *Visitor) stmtList(list []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(list))
	for _, s := range list {
		ns := v.stmt(s)
		if len(v.pending) > 0 {
			out = append(out, v.pending...)
			v.pending = nil
		}
		out = append(out, ns)
	}
	return out
}

// walkStmt rewrites the statement's expressions under the active policy
// and recurses into nested statements. Compound assignments and IncDec
// statements are operator forms of their own, so they rewrite here rather
// than in the expression walk.
func (v *Visitor) walkStmt(s ast.Stmt) ast.Stmt {
	switch st := s.(type) {
	case nil:
		return nil
	case *ast.BlockStmt:
		v.stmtsInPlace(st)
	case *ast.ExprStmt:
		st.X = v.expr(st.X)
	case *ast.AssignStmt:
		v.assign(st)
	case *ast.IncDecStmt:
		return v.incDec(st)
	case *ast.ReturnStmt:
		for i := range st.Results {
			st.Results[i] = v.expr(st.Results[i])
		}
	case *ast.IfStmt:
		st.Init = v.walkStmt(st.Init)
		st.Cond = v.expr(st.Cond)
		v.stmtsInPlace(st.Body)
		st.Else = v.walkStmt(st.Else)
	case *ast.ForStmt:
		st.Init = v.walkStmt(st.Init)
		if st.Cond != nil {
			st.Cond = v.expr(st.Cond)
		}
		st.Post = v.walkStmt(st.Post)
		v.stmtsInPlace(st.Body)
	case *ast.RangeStmt:
		if st.Key != nil {
			st.Key = v.expr(st.Key)
		}
		if st.Value != nil {
			st.Value = v.expr(st.Value)
		}
		st.X = v.expr(st.X)
		v.stmtsInPlace(st.Body)
	case *ast.SwitchStmt:
		st.Init = v.walkStmt(st.Init)
		if st.Tag != nil {
			st.Tag = v.expr(st.Tag)
		}
		v.stmtsInPlace(st.Body)
	case *ast.TypeSwitchStmt:
		st.Init = v.walkStmt(st.Init)
		st.Assign = v.walkStmt(st.Assign)
		v.stmtsInPlace(st.Body)
	case *ast.SelectStmt:
		v.stmtsInPlace(st.Body)
	case *ast.CaseClause:
		for i := range st.List {
			st.List[i] = v.expr(st.List[i])
		}
		st.Body = v.stmtList(st.Body)
	case *ast.CommClause:
		st.Comm = v.walkStmt(st.Comm)
		st.Body = v.stmtList(st.Body)
	case *ast.SendStmt:
		st.Chan = v.expr(st.Chan)
		st.Value = v.expr(st.Value)
	case *ast.DeferStmt:
		st.Call = v.callExpr(st.Call)
	case *ast.GoStmt:
		st.Call = v.callExpr(st.Call)
	case *ast.LabeledStmt:
		st.Stmt = v.stmt(st.Stmt)
	case *ast.DeclStmt:
		v.declStmt(st)
	}
	return s
}

func (v *Visitor) assign(st *ast.AssignStmt) {
	if op, ok := policy.AssignOp(st.Tok); ok && len(st.Lhs) == 1 && len(st.Rhs) == 1 {
		st.Lhs[0] = v.expr(st.Lhs[0])
		st.Rhs[0] = v.expr(st.Rhs[0])
		if call := v.binaryCall(op, st.Lhs[0], st.Rhs[0]); call != nil {
			st.Tok = token.ASSIGN
			st.Rhs[0] = call
		}
		return
	}
	for i := range st.Lhs {
		st.Lhs[i] = v.expr(st.Lhs[i])
	}
	for i := range st.Rhs {
		st.Rhs[i] = v.expr(st.Rhs[i])
	}
}

// incDec lowers x++ and x-- to an explicit assignment when a policy
// governs them, keeping the native statement otherwise.
func (v *Visitor) incDec(st *ast.IncDecStmt) ast.Stmt {
	st.X = v.expr(st.X)
	op := token.ADD
	if st.Tok == token.DEC {
		op = token.SUB
	}
	one := &ast.BasicLit{Kind: token.INT, Value: "1"}
	call := v.binaryCall(op, st.X, one)
	if call == nil {
		return st
	}
	return &ast.AssignStmt{
		Lhs:    []ast.Expr{st.X},
		TokPos: st.TokPos,
		Tok:    token.ASSIGN,
		Rhs:    []ast.Expr{call},
	}
}

func (v *Visitor) declStmt(st *ast.DeclStmt) {
	gen, ok := st.Decl.(*ast.GenDecl)
	if !ok || gen.Tok != token.VAR {
		// Constant declarations keep native arithmetic: the compiler
		// already rejects out-of-range constant results.
		return
	}
	for _, spec := range gen.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i := range vs.Values {
			vs.Values[i] = v.expr(vs.Values[i])
		}
	}
}

func (v *Visitor) push(p policy.Policy) { v.stack = append(v.stack, p) }
func (v *Visitor) pop()                 { v.stack = v.stack[:len(v.stack)-1] }

// top returns the active policy. The stack bottom is always Identity, so
// top never runs dry.
func (v *Visitor) top() policy.Policy { return v.stack[len(v.stack)-1] }

func (v *Visitor) curFunc() *funcScope {
	if len(v.funcs) == 0 {
		return nil
	}
	return v.funcs[len(v.funcs)-1]
}

func (v *Visitor) takeDirective(n ast.Node) (directive.Directive, bool) {
	return v.ix.Take(v.fset.Position(n.Pos()).Line)
}

// declStart returns where a declaration's replacement text begins, which
// is its doc comment when it has one.
func declStart(doc *ast.CommentGroup, n ast.Node) token.Pos {
	if doc != nil {
		return doc.Pos()
	}
	return n.Pos()
}

// markOp records one rewritten operator in the open region.
func (v *Visitor) markOp() {
	if v.region != nil {
		v.region.changed = true
		v.region.Ops++
	}
}

// markArmed records structural changes: planted Recover defers and named
// error results.
func (v *Visitor) markArmed() {
	if v.region != nil {
		v.region.changed = true
		v.region.Armed = true
	}
}

func (v *Visitor) contractIssue(pos token.Position, msg, note string) {
	v.issues = append(v.issues, types.Issue{
		Rule:     RuleContract,
		Category: "contract",
		Filename: pos.Filename,
		Message:  msg,
		Note:     note,
		Severity: types.SeverityError,
		Start:    pos,
		End:      pos,
	})
}
