// Package internal provides the core functionality of the arithmetic
// rewriting tool.
//
// This package implements the engine that scans Go source for //math:
// directive comments and rewrites the arithmetic they govern into explicit
// calls against an overflow-aware runtime package. It produces positioned
// issues for every pending rewrite, directive problem, policy contract
// violation and zero-divisor advisory it finds.
//
// Key components:
//
// Engine: coordinates one run over a file or an in-memory source: parsing,
// directive collection, the rewriting pass and the zero-divisor check.
// Results are optionally cached by content hash so unchanged files are not
// processed twice.
//
// Expand: the snippet entry point. It wraps a block of statements into a
// synthetic function, rewrites every operation under a single policy and
// returns the new statement text, or a DiagnosticError carrying every
// issue positioned relative to the snippet.
//
// Cache: a gob-encoded issue cache keyed by file content and the rewrite
// configuration, used by Engine.Run.
//
// Watcher: an fsnotify loop that reruns the engine over files as they are
// saved, feeding issues to a report callback.
//
// SourceCode: a simple structure holding the lines of a source file for
// the diagnostic formatter.
//
// Usage:
//
//	engine, err := internal.NewEngine(internal.Options{})
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("path/to/file.go")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("%s at %s\n", issue.Message, issue.Start)
//	}
//
// This package is intended for internal use within the rewriting tool and
// should not be imported by external packages.
package internal
