package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mathblocks "github.com/makcandrov/math-blocks"
)

var (
	cfgFile  string
	cacheDir string
	timeout  time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "mathblocks [paths...]",
	Short:            "mathblocks - rewrite Go arithmetic under explicit overflow policies",
	TraverseChildren: true, // Prioritize subcommands
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'mathblocks' is entered
			_ = cmd.Help()
			return
		}
		// Format: mathblocks [path1 path2 ...] => behaves like the check subcommand
		checkCmd.Run(checkCmd, args)
	},
}

func Execute() error {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", mathblocks.DefaultConfigPath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Directory for the issue cache (empty disables caching)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for the whole run")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(expandCmd)
}
