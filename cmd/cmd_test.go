package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	mathblocks "github.com/makcandrov/math-blocks"
	tt "github.com/makcandrov/math-blocks/internal/types"
)

type mockRewriteEngine struct {
	mock.Mock
}

func (m *mockRewriteEngine) Run(filePath string) ([]tt.Issue, error) {
	args := m.Called(filePath)
	return args.Get(0).([]tt.Issue), args.Error(1)
}

func (m *mockRewriteEngine) RunSource(source []byte) ([]tt.Issue, error) {
	args := m.Called(source)
	return args.Get(0).([]tt.Issue), args.Error(1)
}

func (m *mockRewriteEngine) IgnorePath(path string) {
	m.Called(path)
}

const checkedAddExample = `package main

func add(a, b int) int {
	//math:checked
	return a + b
}
`

func TestRunRewrite(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "calc.go")
	err := os.WriteFile(testFile, []byte(checkedAddExample), 0o644)
	assert.NoError(t, err)

	expectedIssues := []tt.Issue{
		{
			Rule:            "math-rewrite",
			Category:        "rewrite",
			Filename:        testFile,
			Message:         "1 arithmetic operation rewritten under the checked policy",
			Suggestion:      "return overflow.MustAdd(a, b)",
			Severity:        tt.SeverityInfo,
			Start:           token.Position{Filename: testFile, Line: 5, Column: 2},
			End:             token.Position{Filename: testFile, Line: 5, Column: 14},
			RequiredImports: []string{"github.com/makcandrov/math-blocks/overflow"},
		},
	}

	mockEngine := new(mockRewriteEngine)
	mockEngine.On("Run", testFile).Return(expectedIssues, nil)

	runRewrite(ctx, logger, mockEngine, []string{testFile}, false)

	content, err := os.ReadFile(testFile)
	assert.NoError(t, err)

	expectedContent := `package main

import "github.com/makcandrov/math-blocks/overflow"

func add(a, b int) int {
	//math:checked
	return overflow.MustAdd(a, b)
}
`
	assert.Equal(t, expectedContent, string(content))
	mockEngine.AssertExpectations(t)
}

func TestRunRewriteDryRun(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "calc.go")
	err := os.WriteFile(testFile, []byte(checkedAddExample), 0o644)
	assert.NoError(t, err)

	expectedIssues := []tt.Issue{
		{
			Rule:            "math-rewrite",
			Category:        "rewrite",
			Filename:        testFile,
			Message:         "1 arithmetic operation rewritten under the checked policy",
			Suggestion:      "return overflow.MustAdd(a, b)",
			Severity:        tt.SeverityInfo,
			Start:           token.Position{Filename: testFile, Line: 5, Column: 2},
			End:             token.Position{Filename: testFile, Line: 5, Column: 14},
			RequiredImports: []string{"github.com/makcandrov/math-blocks/overflow"},
		},
	}

	mockEngine := new(mockRewriteEngine)
	mockEngine.On("Run", testFile).Return(expectedIssues, nil)

	output := captureOutput(t, func() {
		runRewrite(ctx, logger, mockEngine, []string{testFile}, true)
	})

	content, err := os.ReadFile(testFile)
	assert.NoError(t, err)
	assert.Equal(t, checkedAddExample, string(content))
	assert.Contains(t, output, "would fix")
	assert.Contains(t, output, "return overflow.MustAdd(a, b)")
	mockEngine.AssertExpectations(t)
}

func TestPrintIssuesText(t *testing.T) {
	logger := zap.NewNop()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "calc.go")
	err := os.WriteFile(testFile, []byte(checkedAddExample), 0o644)
	assert.NoError(t, err)

	issues := []tt.Issue{
		{
			Rule:       "math-rewrite",
			Category:   "rewrite",
			Filename:   testFile,
			Message:    "1 arithmetic operation rewritten under the checked policy",
			Suggestion: "return overflow.MustAdd(a, b)",
			Severity:   tt.SeverityInfo,
			Start:      token.Position{Filename: testFile, Line: 5, Column: 2},
			End:        token.Position{Filename: testFile, Line: 5, Column: 14},
		},
	}

	output := captureOutput(t, func() {
		printIssues(logger, issues, false, "")
	})

	assert.Contains(t, output, "math-rewrite")
	assert.Contains(t, output, "1 arithmetic operation rewritten under the checked policy")
	assert.Contains(t, output, "return overflow.MustAdd(a, b)")
}

func TestPrintIssuesJSON(t *testing.T) {
	logger := zap.NewNop()

	tempDir := t.TempDir()
	jsonOutput := filepath.Join(tempDir, "output.json")

	issues := []tt.Issue{
		{
			Rule:     "zero-divisor",
			Category: "divide-by-zero",
			Filename: "calc.go",
			Message:  "divisor is zero here",
			Severity: tt.SeverityWarning,
			Start:    token.Position{Filename: "calc.go", Line: 3, Column: 7},
			End:      token.Position{Filename: "calc.go", Line: 3, Column: 12},
		},
	}

	printIssues(logger, issues, true, jsonOutput)

	content, err := os.ReadFile(jsonOutput)
	assert.NoError(t, err)

	var decoded map[string][]tt.Issue
	assert.NoError(t, json.Unmarshal(content, &decoded))
	assert.Len(t, decoded, 1)
	assert.Equal(t, issues, decoded["calc.go"])
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	configPath := filepath.Join(t.TempDir(), "mathblocks.yaml")

	assert.NoError(t, initConfigurationFile(configPath))

	config, err := mathblocks.LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, "mathblocks", config.Name)
	assert.Equal(t, "err", config.ErrName)
}

func TestReadSnippetFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "snippet.txt")
	assert.NoError(t, os.WriteFile(path, []byte("c := a + b\n"), 0o644))

	src, err := readSnippet([]string{path})

	assert.NoError(t, err)
	assert.Equal(t, "c := a + b\n", string(src))
}

func TestReadSnippetFromStdin(t *testing.T) {
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	_, err = w.WriteString("c := a + b\n")
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	oldStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = oldStdin }()

	src, err := readSnippet(nil)

	assert.NoError(t, err)
	assert.Equal(t, "c := a + b\n", string(src))
}

func captureOutput(_ *testing.T, f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = oldStdout
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}
