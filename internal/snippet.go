package internal

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"

	"github.com/makcandrov/math-blocks/internal/directive"
	"github.com/makcandrov/math-blocks/internal/policy"
	"github.com/makcandrov/math-blocks/internal/rewrite"
	tt "github.com/makcandrov/math-blocks/internal/types"
)

// snippetHeader wraps a snippet of statements into a parseable file.
const snippetHeader = "package main\nfunc _() {\n"

// snippetHeaderLines is subtracted from positions reported out of the
// wrapped file so they point into the caller's snippet again.
const snippetHeaderLines = 2

// Expand rewrites every arithmetic operation in the snippet src under p
// and returns the new source. The snippet holds statements, not a whole
// file. Snippets are strict: any directive problem or contract violation
// returns a DiagnosticError instead of partially rewritten code. Under the
// identity policy src comes back unchanged.
func Expand(src string, p policy.Policy, cfg rewrite.Config) (string, error) {
	cfg = cfg.WithDefaults()
	if p == policy.Identity {
		return src, nil
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "snippet.go", snippetHeader+src+"\n}\n", parser.ParseComments)
	if err != nil {
		return "", diagnosticFromParse(err)
	}

	if len(f.Decls) != 1 {
		return "", fmt.Errorf("snippet must contain statements only")
	}
	fn := f.Decls[0].(*ast.FuncDecl)

	ix := directive.ParseComments(f, fset)
	v := rewrite.New(fset, ix, cfg)
	changed := v.Snippet(fn, p)

	issues := ix.Issues()
	issues = append(issues, v.Issues()...)
	issues = append(issues, ix.Unused()...)
	if len(issues) > 0 {
		for i := range issues {
			issues[i].Start = snippetPos(issues[i].Start)
			issues[i].End = snippetPos(issues[i].End)
		}
		sortIssues(issues)
		return "", &tt.DiagnosticError{Issues: issues}
	}

	if !changed {
		return src, nil
	}

	out, err := rewrite.RenderBody(fset, f.Comments, fn.Body)
	if err != nil {
		return "", fmt.Errorf("error rendering rewritten snippet: %w", err)
	}
	return out, nil
}

// diagnosticFromParse converts parser errors into the DiagnosticError
// shape the rewriting pass produces.
func diagnosticFromParse(err error) error {
	list, ok := err.(scanner.ErrorList)
	if !ok {
		return fmt.Errorf("error parsing snippet: %w", err)
	}
	issues := make([]tt.Issue, 0, len(list))
	for _, e := range list {
		pos := snippetPos(e.Pos)
		issues = append(issues, tt.Issue{
			Rule:     "syntax",
			Category: "parse",
			Message:  e.Msg,
			Severity: tt.SeverityError,
			Start:    pos,
			End:      pos,
		})
	}
	return &tt.DiagnosticError{Issues: issues}
}

// snippetPos maps a position in the wrapped file back into the snippet by
// dropping the wrapper lines.
func snippetPos(pos token.Position) token.Position {
	pos.Filename = ""
	if pos.Line > snippetHeaderLines {
		pos.Line -= snippetHeaderLines
	}
	return pos
}
