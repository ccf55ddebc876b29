package mathblocks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/makcandrov/math-blocks/internal"
	tt "github.com/makcandrov/math-blocks/internal/types"
	"github.com/makcandrov/math-blocks/scanner"
)

// RewriteEngine is the part of the engine the processing pipeline needs.
type RewriteEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnorePath(path string)
}

// New builds a file engine from the configuration file at configPath. An
// empty cacheDir disables the issue cache.
func New(configPath string, cacheDir string) (*internal.Engine, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	return internal.NewEngine(internal.Options{
		RuntimePath: config.Runtime,
		ErrName:     config.ErrName,
		IgnorePaths: config.IgnorePaths,
		CacheDir:    cacheDir,
	})
}

// ProcessSources runs the processor over in-memory sources, in order.
func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine RewriteEngine,
	sources [][]byte,
	processor func(RewriteEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessFiles runs the processor over every given path, files and
// directories alike.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine RewriteEngine,
	paths []string,
	processor func(RewriteEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath runs the processor over one path. Directories are scanned
// for Go files and processed by a worker pool with a progress bar; a
// file that fails is logged and skipped so one bad file does not sink the
// whole run. Single files are processed directly and their error returned.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine RewriteEngine,
	path string,
	processor func(RewriteEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	var issues []tt.Issue
	if info.IsDir() {
		files, err := scanner.New(path, ".go").Scan()
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, nil
		}

		// Results land at the file's own index so output order matches
		// scan order no matter how the workers interleave.
		results := make([][]tt.Issue, len(files))

		maxWorkers := runtime.NumCPU()
		sem := make(chan struct{}, maxWorkers)
		var wg sync.WaitGroup

		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription(path),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))

		for i, file := range files {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, fp string) {
				defer wg.Done()
				defer func() { <-sem }()

				fileIssues, err := processor(engine, fp)
				if err != nil {
					if logger != nil {
						logger.Error("error processing file", zap.String("file", fp), zap.Error(err))
					}
				} else {
					results[i] = fileIssues
				}
				_ = bar.Add(1)
			}(i, file.Path)
		}
		wg.Wait()

		for _, r := range results {
			issues = append(issues, r...)
		}

		fmt.Println()
		return issues, nil
	} else if hasDesiredExtension(path) {
		fileIssues, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		issues = append(issues, fileIssues...)
	}

	return issues, nil
}

// ProcessFile is the processor that scans one file for pending rewrites.
func ProcessFile(engine RewriteEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

// ProcessSource is the processor that scans source held in memory.
func ProcessSource(engine RewriteEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

var desiredExtensions = map[string]bool{
	".go": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}
