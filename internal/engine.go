package internal

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"

	"github.com/makcandrov/math-blocks/internal/checks"
	"github.com/makcandrov/math-blocks/internal/directive"
	"github.com/makcandrov/math-blocks/internal/rewrite"
	tt "github.com/makcandrov/math-blocks/internal/types"
)

// Engine runs the directive, rewrite and divisor passes over Go files.
type Engine struct {
	cfg         rewrite.Config
	ignorePaths []string
	cache       *Cache
}

// Options configures an Engine.
type Options struct {
	RuntimePath string   // import path of the runtime package; empty selects the bundled one
	ErrName     string   // name given to unnamed error results under the propagating policy
	IgnorePaths []string // path prefixes excluded from Run
	CacheDir    string   // directory for the issue cache; empty disables caching
}

// NewEngine creates a rewrite engine.
func NewEngine(opts Options) (*Engine, error) {
	e := &Engine{
		cfg: rewrite.Config{
			RuntimePath: opts.RuntimePath,
			ErrName:     opts.ErrName,
		}.WithDefaults(),
		ignorePaths: opts.IgnorePaths,
	}
	if opts.CacheDir != "" {
		cache, err := NewCache(opts.CacheDir, e.cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// Config returns the rewrite configuration the engine runs with.
func (e *Engine) Config() rewrite.Config { return e.cfg }

// IgnorePath excludes files under the given path prefix from future runs.
func (e *Engine) IgnorePath(path string) {
	e.ignorePaths = append(e.ignorePaths, path)
}

func (e *Engine) ignored(filename string) bool {
	for _, prefix := range e.ignorePaths {
		if strings.HasPrefix(filename, prefix) {
			return true
		}
	}
	return false
}

// Run processes the named file and returns its issues: pending rewrites
// with their replacement source, directive problems, contract violations
// and zero-divisor advisories.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.ignored(filename) {
		return nil, nil
	}
	if e.cache != nil {
		if issues, ok := e.cache.Get(filename); ok {
			return issues, nil
		}
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	issues, err := e.run(filename, src)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, issues); err != nil {
			return nil, fmt.Errorf("error caching issues: %w", err)
		}
	}
	return issues, nil
}

// RunSource processes source held in memory.
func (e *Engine) RunSource(src []byte) ([]tt.Issue, error) {
	return e.run("", src)
}

func (e *Engine) run(filename string, src []byte) ([]tt.Issue, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	ix := directive.ParseComments(f, fset)
	issues := ix.Issues()

	if !ix.Empty() {
		v := rewrite.New(fset, ix, e.cfg)
		regions := v.File(f)
		issues = append(issues, v.Issues()...)
		for _, r := range regions {
			issues = append(issues, e.regionIssue(f, fset, r))
		}
		issues = append(issues, ix.Unused()...)
	}

	// The divisor check runs over the rewritten tree so it sees both the
	// calls produced above and calls already present in the file.
	issues = append(issues, checks.DetectZeroDivisors(filename, f, fset, e.cfg.RuntimeName)...)

	sortIssues(issues)
	return issues, nil
}

// regionIssue converts one changed region into a rewritable issue whose
// suggestion carries the replacement source.
func (e *Engine) regionIssue(f *ast.File, fset *token.FileSet, r rewrite.Region) tt.Issue {
	issue := tt.Issue{
		Rule:     rewrite.RuleRewrite,
		Category: "rewrite",
		Filename: r.Start.Filename,
		Message:  regionMessage(r),
		Severity: tt.SeverityInfo,
		Start:    r.Start,
		End:      r.End,
	}

	suggestion, err := rewrite.Render(fset, f.Comments, r.Nodes...)
	if err != nil {
		issue.Severity = tt.SeverityWarning
		issue.Message = fmt.Sprintf("cannot render the %s replacement: %v", r.Policy, err)
		return issue
	}

	issue.Suggestion = suggestion
	issue.RequiredImports = []string{e.cfg.RuntimePath}
	return issue
}

func regionMessage(r rewrite.Region) string {
	switch {
	case r.Ops == 0 && r.Armed:
		return "overflow errors will propagate through the enclosing function's error result"
	case r.Ops == 1:
		return fmt.Sprintf("1 arithmetic operation rewritten under the %s policy", r.Policy)
	default:
		return fmt.Sprintf("%d arithmetic operations rewritten under the %s policy", r.Ops, r.Policy)
	}
}

// sortIssues orders issues by position, then rule, so reports stay stable
// across runs.
func sortIssues(issues []tt.Issue) {
	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		if a.Start.Column != b.Start.Column {
			return a.Start.Column < b.Start.Column
		}
		return a.Rule < b.Rule
	})
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a
// SourceCode struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}
