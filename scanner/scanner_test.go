package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		err := os.MkdirAll(filepath.Dir(fullPath), 0o755)
		require.NoError(t, err)
		err = os.WriteFile(fullPath, []byte(content), 0o644)
		require.NoError(t, err)
	}
	return tempDir
}

func TestScannerFindsSourceFiles(t *testing.T) {
	tempDir := writeTree(t, map[string]string{
		"file1.go":        "package main",
		"file2.go":        "package main",
		"notes.txt":       "This is a text file",
		"subdir/file3.go": "package subdir",
	})

	scanner := New(tempDir, ".go")
	scannedFiles, err := scanner.Scan()
	require.NoError(t, err)

	assert.Equal(t, 3, len(scannedFiles), "should find 3 Go files")

	foundPaths := make(map[string]bool)
	for _, file := range scannedFiles {
		foundPaths[file.Path] = true
		assert.Greater(t, file.Size, int64(0), "file size should be greater than 0")
	}

	assert.True(t, foundPaths[filepath.Join(tempDir, "file1.go")])
	assert.True(t, foundPaths[filepath.Join(tempDir, "file2.go")])
	assert.True(t, foundPaths[filepath.Join(tempDir, "subdir/file3.go")])
	assert.False(t, foundPaths[filepath.Join(tempDir, "notes.txt")])
}

func TestScannerReturnsFilesInPathOrder(t *testing.T) {
	tempDir := writeTree(t, map[string]string{
		"c.go":     "package main",
		"a.go":     "package main",
		"b/b.go":   "package b",
		"b/a.go":   "package b",
		"a_sub.go": "package main",
	})

	scanner := New(tempDir, ".go")
	scannedFiles, err := scanner.Scan()
	require.NoError(t, err)

	require.Len(t, scannedFiles, 5)
	for i := 1; i < len(scannedFiles); i++ {
		assert.Less(t, scannedFiles[i-1].Path, scannedFiles[i].Path,
			"scan order should be sorted by path")
	}
}

func TestScannerExcludesPaths(t *testing.T) {
	tempDir := writeTree(t, map[string]string{
		"keep.go":               "package main",
		"vendor/dep/dep.go":     "package dep",
		"gen/out.go":            "package gen",
		"gen_extra/included.go": "package genextra",
	})

	scanner := New(tempDir, ".go").
		Exclude(filepath.Join(tempDir, "vendor"), filepath.Join(tempDir, "gen"))
	scannedFiles, err := scanner.Scan()
	require.NoError(t, err)

	foundPaths := make(map[string]bool)
	for _, file := range scannedFiles {
		foundPaths[file.Path] = true
	}

	assert.True(t, foundPaths[filepath.Join(tempDir, "keep.go")])
	// gen_extra is a sibling of gen, not inside it
	assert.True(t, foundPaths[filepath.Join(tempDir, "gen_extra/included.go")])
	assert.False(t, foundPaths[filepath.Join(tempDir, "vendor/dep/dep.go")])
	assert.False(t, foundPaths[filepath.Join(tempDir, "gen/out.go")])
}

func TestScannerWithoutExtensionsMatchesEverything(t *testing.T) {
	tempDir := writeTree(t, map[string]string{
		"a.go":  "package main",
		"b.txt": "text",
	})

	scanner := New(tempDir)
	scannedFiles, err := scanner.Scan()
	require.NoError(t, err)

	assert.Len(t, scannedFiles, 2)
}

func TestScannerMissingRoot(t *testing.T) {
	scanner := New(filepath.Join(t.TempDir(), "does-not-exist"), ".go")
	_, err := scanner.Scan()
	assert.Error(t, err)
}
