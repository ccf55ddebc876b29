package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mathblocks "github.com/makcandrov/math-blocks"
)

var expandPolicy string

var expandCmd = &cobra.Command{
	Use:   "expand [file]",
	Short: "Rewrite a snippet of statements under one policy",
	Long: `Reads a block of Go statements from the given file, or from standard
input when no file is named, and prints the rewritten block. The snippet
holds statements only, without a package clause.

Example) echo 'c := a + b' | mathblocks expand -p checked`,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := mathblocks.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		src, err := readSnippet(args)
		if err != nil {
			logger.Fatal("Failed to read snippet", zap.Error(err))
		}

		out, err := mathblocks.Expand(string(src), expandPolicy, config)
		if err != nil {
			var diag *mathblocks.DiagnosticError
			if errors.As(err, &diag) {
				for _, issue := range diag.Issues {
					fmt.Fprintf(os.Stderr, "%d:%d: %s\n", issue.Start.Line, issue.Start.Column, issue.Message)
				}
				os.Exit(1)
			}
			logger.Fatal("Failed to expand snippet", zap.Error(err))
		}

		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		fmt.Print(out)
	},
}

func init() {
	expandCmd.Flags().StringVarP(&expandPolicy, "policy", "p", "checked", "Overflow policy to rewrite under")
}

func readSnippet(args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}
