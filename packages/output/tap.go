package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/volleyhq/volley/packages/core/runner"
)

// TAPFormatter renders results in the Test Anything Protocol.
type TAPFormatter struct {
	writer    io.Writer
	testCount int
	results   []tapResult
}

type tapResult struct {
	number   int
	name     string
	passed   bool
	skipped  bool
	failures []string
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer:  os.Stdout,
		results: make([]tapResult, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.FileResult) {
	for _, e := range result.Entries {
		f.testCount++
		tr := tapResult{
			number:  f.testCount,
			name:    entryLabel(e),
			passed:  e.Success(),
			skipped: e.Skipped,
		}

		for _, entryErr := range e.Errors {
			tr.failures = append(tr.failures, entryErr.Error())
		}

		f.results = append(f.results, tr)
	}
}

func (f *TAPFormatter) FormatError(err error) {
	// Errors are included in individual entry results
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written in Flush
}

// Flush writes the accumulated TAP output.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", f.testCount)

	for _, r := range f.results {
		if r.skipped {
			fmt.Fprintf(f.writer, "ok %d - %s # SKIP\n", r.number, r.name)
			continue
		}

		if r.passed {
			fmt.Fprintf(f.writer, "ok %d - %s\n", r.number, r.name)
			continue
		}

		fmt.Fprintf(f.writer, "not ok %d - %s\n", r.number, r.name)
		if len(r.failures) > 0 {
			fmt.Fprintf(f.writer, "  ---\n")
			fmt.Fprintf(f.writer, "  failures:\n")
			for _, msg := range r.failures {
				fmt.Fprintf(f.writer, "    - %s\n", escapeYAML(msg))
			}
			fmt.Fprintf(f.writer, "  ...\n")
		}
	}

	fmt.Fprintln(f.writer)

	return nil
}

func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
