package output

import (
	"fmt"
	"time"

	"github.com/volleyhq/volley/packages/core/runner"
)

// Formatter receives one FileResult per run file.
type Formatter interface {
	FormatResult(result *runner.FileResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that accumulate results and
// write once at the end of the run.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// entryLabel names an entry for reports. The resolved request is
// preferred; entries that failed before resolution fall back to their
// position in the file.
func entryLabel(e *runner.EntryResult) string {
	if e.Request != nil {
		return e.Request.Method + " " + e.Request.URL
	}
	return fmt.Sprintf("entry %d", e.Index)
}
