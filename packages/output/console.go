package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/volleyhq/volley/packages/core/runner"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.FileResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Running: "+result.Filename))

	for _, e := range result.Entries {
		if e.Skipped {
			fmt.Fprintf(f.writer, "  %s %s\n", yellow("-"), entryLabel(e))
			continue
		}

		if e.Success() {
			fmt.Fprintf(f.writer, "  %s %s %s\n", green("✓"), entryLabel(e),
				cyan(fmt.Sprintf("(%dms)", e.Elapsed.Milliseconds())))
		} else {
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), entryLabel(e),
				cyan(fmt.Sprintf("(%dms)", e.Elapsed.Milliseconds())))
			for _, entryErr := range e.Errors {
				fmt.Fprintf(f.writer, "      %s %s\n", red("→"), entryErr.Error())
			}
		}

		if f.verbose && len(e.Captures) > 0 {
			fmt.Fprintf(f.writer, "    Captures:\n")
			for _, c := range e.Captures {
				fmt.Fprintf(f.writer, "      %s = %v\n", c.Name, c.Value)
			}
		}
	}

	fmt.Fprintf(f.writer, "\nEntries: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	total := result.Passed + result.Failed + result.Skipped
	fmt.Fprintf(f.writer, "%d total\n", total)
	fmt.Fprintf(f.writer, "Time:  %dms\n\n", result.Duration.Milliseconds())
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("volley"), version)
}
