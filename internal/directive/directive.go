// Package directive parses //math: policy markers from a file's comments
// and maps each one to the statement line it governs.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/makcandrov/math-blocks/internal/policy"
	"github.com/makcandrov/math-blocks/internal/types"
)

// Prefix starts every policy directive. Like Go's own compiler
// directives, the marker is only recognized with no space after the
// slashes.
const Prefix = "//math:"

// RuleName tags issues produced while parsing directives.
const RuleName = "math-directive"

// Directive is one parsed policy marker.
type Directive struct {
	Policy policy.Policy
	Arg    string         // raw text after the marker
	Pos    token.Position // position of the comment
}

// Index holds the directives of one file keyed by the line they govern,
// which is the line immediately below the comment. Visitors consume
// entries as they attach them to statements; whatever remains unconsumed
// never governed anything and is reported by Unused.
type Index struct {
	byLine   map[int]Directive
	consumed map[int]bool
	issues   []types.Issue
}

// ParseComments scans every comment of f for policy directives.
func ParseComments(f *ast.File, fset *token.FileSet) *Index {
	ix := &Index{
		byLine:   make(map[int]Directive),
		consumed: make(map[int]bool),
	}
	stmtLines := indexStatementOffsets(f, fset)

	for _, cg := range f.Comments {
		for _, comment := range cg.List {
			ix.parseComment(comment, fset, stmtLines)
		}
	}
	return ix
}

// parseComment classifies a single comment. Non-directives are skipped,
// well-formed directives are registered and malformed ones turn into
// warnings.
func (ix *Index) parseComment(comment *ast.Comment, fset *token.FileSet, stmtLines map[int]int) {
	text := comment.Text
	pos := fset.Position(comment.Slash)

	if !strings.HasPrefix(text, Prefix) {
		// Catch the near miss "// math:checked", which Go comment
		// conventions would otherwise silently demote to prose.
		if rest, ok := strings.CutPrefix(text, "//"); ok && strings.HasPrefix(strings.TrimLeft(rest, " \t"), "math:") {
			ix.warn(pos, "possible malformed directive: remove the space after //")
		}
		return
	}

	arg := strings.TrimSpace(text[len(Prefix):])
	p, ok := policy.Parse(arg)
	if !ok {
		ix.warn(pos, fmt.Sprintf("unknown policy %q: accepted policies are %s", arg, strings.Join(policy.Names, ", ")))
		return
	}

	if startOffset, onCodeLine := stmtLines[pos.Line]; onCodeLine && pos.Offset > startOffset {
		ix.warn(pos, "directive must be alone on the line above the statement it governs")
		return
	}

	ix.byLine[pos.Line+1] = Directive{Policy: p, Arg: arg, Pos: pos}
}

func (ix *Index) warn(pos token.Position, msg string) {
	ix.issues = append(ix.issues, types.Issue{
		Rule:     RuleName,
		Category: "directive",
		Filename: pos.Filename,
		Message:  msg,
		Severity: types.SeverityWarning,
		Start:    pos,
		End:      pos,
	})
}

// Take returns the directive governing the statement or declaration that
// starts at line and marks it used.
func (ix *Index) Take(line int) (Directive, bool) {
	d, ok := ix.byLine[line]
	if ok {
		ix.consumed[line] = true
	}
	return d, ok
}

// Empty reports whether the file carries no directives at all, letting
// callers skip the rewriting pass entirely.
func (ix *Index) Empty() bool { return len(ix.byLine) == 0 }

// Issues returns the problems found while parsing.
func (ix *Index) Issues() []types.Issue { return ix.issues }

// Unused returns a warning for every directive that no statement ever
// consumed: markers above blank lines, above declarations that take no
// policy, or at the end of a block.
func (ix *Index) Unused() []types.Issue {
	var issues []types.Issue
	for line, d := range ix.byLine {
		if ix.consumed[line] {
			continue
		}
		issues = append(issues, types.Issue{
			Rule:     RuleName,
			Category: "directive",
			Filename: d.Pos.Filename,
			Message:  fmt.Sprintf("%s%s directive is not followed by a statement", Prefix, d.Arg),
			Severity: types.SeverityWarning,
			Start:    d.Pos,
			End:      d.Pos,
		})
	}
	return issues
}

// indexStatementOffsets maps each line holding code to the offset of the
// first statement or declaration starting on it. The map tells inline
// comments apart from standalone ones.
func indexStatementOffsets(f *ast.File, fset *token.FileSet) map[int]int {
	lines := make(map[int]int)
	record := func(n ast.Node) {
		pos := fset.Position(n.Pos())
		if cur, exists := lines[pos.Line]; !exists || pos.Offset < cur {
			lines[pos.Line] = pos.Offset
		}
	}
	ast.Inspect(f, func(n ast.Node) bool {
		switch n.(type) {
		case ast.Stmt, ast.Decl, *ast.Field:
			record(n)
		}
		return true
	})
	return lines
}
