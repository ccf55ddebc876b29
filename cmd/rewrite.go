package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mathblocks "github.com/makcandrov/math-blocks"
	"github.com/makcandrov/math-blocks/internal"
	"github.com/makcandrov/math-blocks/internal/fixer"
	tt "github.com/makcandrov/math-blocks/internal/types"
)

var (
	dryRun    bool
	watchMode bool
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [paths...]",
	Short: "Apply pending rewrites to the files in place",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := mathblocks.New(cfgFile, cacheDir)
		if err != nil {
			logger.Fatal("Failed to initialize the rewrite engine", zap.Error(err))
		}

		if watchMode {
			runWatch(logger, engine, args, dryRun)
			return
		}
		runRewrite(ctx, logger, engine, args, dryRun)
	},
}

func init() {
	rewriteCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show rewrites without applying them")
	rewriteCmd.Flags().BoolVar(&watchMode, "watch", false, "Stay running and rewrite files as they change")
}

func runRewrite(ctx context.Context, logger *zap.Logger, engine mathblocks.RewriteEngine, paths []string, dryRun bool) {
	fix := fixer.New(dryRun)

	for _, path := range paths {
		issues, err := mathblocks.ProcessPath(ctx, logger, engine, path, mathblocks.ProcessFile)
		if err != nil {
			logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			continue
		}

		// Issues from a directory span several files; the fixer works one
		// file at a time.
		issuesByFile := make(map[string][]tt.Issue)
		for _, issue := range issues {
			issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
		}
		for filename, fileIssues := range issuesByFile {
			if err := fix.Fix(filename, fileIssues); err != nil {
				logger.Error("Error rewriting file", zap.String("file", filename), zap.Error(err))
			}
		}
	}
}

// runWatch blocks rewriting files on every save until interrupted.
func runWatch(logger *zap.Logger, engine *internal.Engine, dirs []string, dryRun bool) {
	fix := fixer.New(dryRun)
	watcher, err := internal.NewWatcher(engine, dirs, func(filename string, issues []tt.Issue) {
		if err := fix.Fix(filename, issues); err != nil {
			logger.Error("Error rewriting file", zap.String("file", filename), zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Failed to create the file watcher", zap.Error(err))
	}
	if err := watcher.Start(); err != nil {
		logger.Fatal("Failed to start the file watcher", zap.Error(err))
	}
	defer func() { _ = watcher.Stop() }()

	fmt.Println("watching for changes, press ctrl-c to stop")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}
