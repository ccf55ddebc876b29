// Package fixer applies the replacement source carried by rewritable
// issues back to the files that produced them.
package fixer

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"

	tt "github.com/makcandrov/math-blocks/internal/types"
)

// Fixer splices issue suggestions into source files.
type Fixer struct {
	DryRun bool
}

func New(dryRun bool) *Fixer {
	return &Fixer{DryRun: dryRun}
}

// Fix applies every rewritable issue to filename. Replacements run bottom
// up so the line numbers of pending issues stay valid, and nothing is
// written unless the fixed source still parses.
func (f *Fixer) Fix(filename string, issues []tt.Issue) error {
	rewritable := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Rewritable() {
			rewritable = append(rewritable, issue)
		}
	}
	if len(rewritable) == 0 {
		return nil
	}

	if f.DryRun {
		for _, issue := range rewritable {
			fmt.Printf("would fix %s:%d: %s\n", filename, issue.Start.Line, issue.Message)
			fmt.Printf("suggestion:\n%s\n", issue.Suggestion)
		}
		return nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	sort.Slice(rewritable, func(i, j int) bool {
		return rewritable[i].Start.Line > rewritable[j].Start.Line
	})

	lines := strings.Split(string(content), "\n")
	for _, issue := range rewritable {
		startLine := issue.Start.Line - 1
		endLine := issue.End.Line - 1
		if startLine < 0 || endLine >= len(lines) || startLine > endLine {
			return fmt.Errorf("issue at %s:%d is out of range", filename, issue.Start.Line)
		}

		indent := extractIndent(lines[startLine])
		suggestion := applyIndent(issue.Suggestion, indent)

		lines = append(lines[:startLine], append([]string{suggestion}, lines[endLine+1:]...)...)
	}

	fixed, err := EnsureImports([]byte(strings.Join(lines, "\n")), CollectRequiredImports(rewritable))
	if err != nil {
		return fmt.Errorf("failed to add imports: %w", err)
	}

	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, filename, fixed, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("fixed source does not parse: %w", err)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, astFile); err != nil {
		return fmt.Errorf("failed to format file: %w", err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func extractIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// applyIndent prefixes every non-empty line of code with indent, keeping
// blank lines inside multi-line suggestions clean.
func applyIndent(code, indent string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
