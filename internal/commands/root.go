// Package commands implements the tsucho command line.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tsucho-dev/tsucho/internal/buildinfo"
	"github.com/tsucho-dev/tsucho/internal/logger"
)

// rootEnv names the environment variable holding the default data root.
const rootEnv = "TSUCHO_ROOT"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	root     string
	logLevel string
	logJSON  bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "tsucho",
		Short:   "Passbook reconciliation for inheritance-tax investigations",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logger.New(cmd.ErrOrStderr(), logger.Options{Level: opts.logLevel, JSON: opts.logJSON})
			if err != nil {
				return err
			}
			cmd.SetContext(logger.WithContext(cmd.Context(), l))
			return nil
		},
	}

	defaultRoot := os.Getenv(rootEnv)
	if defaultRoot == "" {
		defaultRoot = "."
	}
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", defaultRoot, "data root directory (env "+rootEnv+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "write logs as JSON lines")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newCaseCommand(opts),
		newImportCommand(opts),
		newAnalyzeCommand(opts),
		newClassifyCommand(opts),
		newAccountCommand(opts),
		newReportCommand(opts),
		newConfigCommand(opts),
		newLogCommand(opts),
	)

	return rootCmd
}
