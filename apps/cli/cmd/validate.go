package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volleyhq/volley/packages/core/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate volley files for syntax errors",
	Long: `Validate volley files for syntax errors without executing them.

Examples:
  volley validate api.volley
  volley validate ./tests/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exit(ExitUsageError, "%v", err)
	}
	if len(files) == 0 {
		return exit(ExitUsageError, "no .volley or .http files found")
	}

	invalid := 0
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			invalid++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d entries)\n", file, len(f.Entries))
	}

	if invalid > 0 {
		return exit(ExitParseError, "%d of %d files failed to parse", invalid, len(files))
	}
	return nil
}
