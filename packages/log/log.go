package log

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger is the sink the runner and CLI write diagnostics to. Calls are
// fire-and-forget: nothing in the run depends on their outcome.
type Logger interface {
	Verbose(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Console writes to a terminal. Verbose lines are emitted only when the
// logger was built with verbose enabled.
type Console struct {
	out     io.Writer
	verbose bool
}

func NewConsole(verbose bool) *Console {
	return &Console{out: os.Stderr, verbose: verbose}
}

// NewConsoleWriter is NewConsole with an explicit destination.
func NewConsoleWriter(w io.Writer, verbose bool) *Console {
	return &Console{out: w, verbose: verbose}
}

func (c *Console) Verbose(format string, args ...any) {
	if !c.verbose {
		return
	}
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintln(c.out, dim("* "+fmt.Sprintf(format, args...)))
}

func (c *Console) Warn(format string, args ...any) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintln(c.out, yellow("warning: ")+fmt.Sprintf(format, args...))
}

func (c *Console) Error(format string, args ...any) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintln(c.out, red("error: ")+fmt.Sprintf(format, args...))
}

// Discard drops everything. Handy default for tests and library callers
// that do not care about diagnostics.
type Discard struct{}

func (Discard) Verbose(string, ...any) {}
func (Discard) Warn(string, ...any)    {}
func (Discard) Error(string, ...any)   {}
