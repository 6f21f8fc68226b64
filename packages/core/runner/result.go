package runner

import (
	"time"

	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/http"
)

// EntryResult is everything one entry produced: the resolved request,
// the response if the exchange happened, captures, assertion outcomes
// and the errors collected along the way. Elapsed is the wall time of
// the HTTP exchange including redirects, zero when the entry failed
// before or during transport.
type EntryResult struct {
	Index    int
	Request  *http.Request
	Response *http.Response
	Captures []*CaptureResult
	Asserts  []*AssertResult
	Errors   []*Error
	Elapsed  time.Duration
	Skipped  bool
}

func (r *EntryResult) Success() bool {
	return len(r.Errors) == 0
}

type CaptureResult struct {
	Name  string
	Value any
}

// AssertResult is one evaluated assertion, implicit or explicit.
// Expected and Actual are display strings; Message carries failure
// detail when the assertion could not even be compared (missing query
// value, bad regex, unresolved template).
type AssertResult struct {
	Title    string
	Success  bool
	Expected string
	Actual   string
	Message  string
	Pos      parser.Position
}

// failureMessage renders the one-line form used in EntryResult.Errors.
func (a *AssertResult) failureMessage() string {
	if a.Message != "" {
		return "assert failure: " + a.Title + ": " + a.Message
	}
	return "assert failure: " + a.Title + " (actual: " + a.Actual + ", expected: " + a.Expected + ")"
}

// FileResult aggregates the entries of one file run.
type FileResult struct {
	Filename string
	Entries  []*EntryResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

func (r *FileResult) Success() bool {
	return r.Failed == 0
}
