package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "volley",
	Short: "Plain text HTTP tests.",
	Long: `volley runs HTTP tests written in plain text files. Each file is a
sequence of requests with expected responses, captures and asserts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries the process exit code of a failed command. A nil
// err means the failure was already reported and only the code remains.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func exit(code int, format string, args ...any) *exitError {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}

func exitSilent(code int) *exitError {
	return &exitError{code: code}
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", ee.err)
			}
			os.Exit(ee.code)
		}
		// Anything cobra itself rejects is a usage error.
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitUsageError)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
