package rewrite

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"
)

// Render prints rewritten nodes as replacement source. Comments lying
// inside a node's original extent survive in the output, so directives on
// nested statements still reach a later pass.
func Render(fset *token.FileSet, comments []*ast.CommentGroup, nodes ...ast.Node) (string, error) {
	var buf bytes.Buffer
	for i, n := range nodes {
		if i > 0 {
			buf.WriteByte('\n')
		}
		cn := &printer.CommentedNode{Node: n, Comments: comments}
		if err := printer.Fprint(&buf, fset, cn); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// RenderBody prints the statements of a block without the surrounding
// braces, dropping the one level of indentation the braces added.
func RenderBody(fset *token.FileSet, comments []*ast.CommentGroup, body *ast.BlockStmt) (string, error) {
	raw, err := Render(fset, comments, body)
	if err != nil {
		return "", err
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	raw = strings.Trim(raw, "\n")
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "\t")
	}
	return strings.Join(lines, "\n"), nil
}
