// Package cli implements the command-line interface for vessel, the
// feature composition engine's CLI front-end. Grounded on the teacher's
// internal/cli/root.go: a package-level rootCmd, persistent flags
// configuring the ui package, and an Execute() entrypoint called from
// cmd/vessel/main.go.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corewright/vessel/internal/ui"
	"github.com/corewright/vessel/internal/util"
)

var (
	workspacePath string
	noColor       bool
	quiet         bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "vessel",
	Short: "Dev container feature composition engine",
	Long: `vessel resolves dev container feature identifiers, fetches their
payloads, assembles them into a feature set, synthesizes a multi-stage
container build recipe, and drives the container builder to produce an
image with the requested features installed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity := ui.VerbosityNormal
		if quiet {
			verbosity = ui.VerbosityQuiet
		} else if verbose {
			verbosity = ui.VerbosityVerbose
		}
		ui.Configure(ui.Config{Verbosity: verbosity, NoColor: noColor, Writer: os.Stdout, ErrWriter: os.Stderr})
		util.SetVerbose(verbose)

		if workspacePath == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("determine working directory: %w", err)
			}
			workspacePath = wd
		}
		return nil
	},
}

// Execute runs the root command; called once from cmd/vessel/main.go.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspacePath, "workspace", "w", "", "workspace directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(featuresCmd)
}
