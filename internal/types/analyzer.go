package types

import (
	"go/ast"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/analysis"
)

// RunAnalyzer parses code and runs a single analyzer over it, converting
// the reported diagnostics into Issues. It exists so checks shipped as
// analysis.Analyzer values stay usable from tests and from vet-style
// drivers without the full engine.
func RunAnalyzer(code string, analyzer *analysis.Analyzer) ([]Issue, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", code, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	pass := &analysis.Pass{
		Fset:  fset,
		Files: []*ast.File{file},
		Report: func(d analysis.Diagnostic) {
			issues = append(issues, Issue{
				Rule:     analyzer.Name,
				Category: d.Category,
				Filename: fset.Position(d.Pos).Filename,
				Message:  d.Message,
				Severity: SeverityInfo,
				Start:    fset.Position(d.Pos),
				End:      fset.Position(d.End),
			})
		},
	}

	if _, err := analyzer.Run(pass); err != nil {
		return nil, err
	}
	return issues, nil
}
