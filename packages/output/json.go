package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/volleyhq/volley/packages/core/runner"
)

// JSONOutput is the root of the machine-readable report.
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Files    []JSONFile  `json:"files"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type JSONFile struct {
	Filename string      `json:"filename"`
	Duration float64     `json:"duration"`
	Entries  []JSONEntry `json:"entries"`
}

type JSONEntry struct {
	Index    int           `json:"index"`
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Skipped  bool          `json:"skipped,omitempty"`
	Duration float64       `json:"duration"`
	Request  *JSONRequest  `json:"request,omitempty"`
	Response *JSONResponse `json:"response,omitempty"`
	Captures []JSONCapture `json:"captures,omitempty"`
	Asserts  []JSONAssert  `json:"asserts,omitempty"`
	Errors   []JSONError   `json:"errors,omitempty"`
}

type JSONRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type JSONResponse struct {
	StatusCode int     `json:"statusCode"`
	Duration   float64 `json:"duration"`
}

type JSONCapture struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type JSONAssert struct {
	Title   string `json:"title"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

type JSONError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// JSONFormatter accumulates results and writes the report on Flush.
type JSONFormatter struct {
	writer io.Writer
	files  []JSONFile
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
		files:  make([]JSONFile, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.FileResult) {
	file := JSONFile{
		Filename: result.Filename,
		Duration: float64(result.Duration.Milliseconds()),
		Entries:  make([]JSONEntry, 0, len(result.Entries)),
	}

	for _, e := range result.Entries {
		entry := JSONEntry{
			Index:    e.Index,
			Name:     entryLabel(e),
			Passed:   !e.Skipped && e.Success(),
			Skipped:  e.Skipped,
			Duration: float64(e.Elapsed.Milliseconds()),
		}

		if e.Request != nil {
			entry.Request = &JSONRequest{
				Method: e.Request.Method,
				URL:    e.Request.URL,
			}
		}

		if e.Response != nil {
			entry.Response = &JSONResponse{
				StatusCode: e.Response.StatusCode,
				Duration:   float64(e.Response.Duration.Milliseconds()),
			}
		}

		for _, c := range e.Captures {
			entry.Captures = append(entry.Captures, JSONCapture{Name: c.Name, Value: c.Value})
		}

		for _, a := range e.Asserts {
			ja := JSONAssert{Title: a.Title, Passed: a.Success}
			if !a.Success {
				ja.Message = a.Message
			}
			entry.Asserts = append(entry.Asserts, ja)
		}

		for _, entryErr := range e.Errors {
			entry.Errors = append(entry.Errors, JSONError{
				Kind:    entryErr.Kind.String(),
				Message: entryErr.Message,
				Line:    entryErr.Pos.Line,
				Column:  entryErr.Pos.Column,
			})
		}

		file.Entries = append(file.Entries, entry)
	}

	f.files = append(f.files, file)
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual entry results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output.
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var total, passed, failed, skipped int
	for _, file := range f.files {
		for _, e := range file.Entries {
			total++
			switch {
			case e.Skipped:
				skipped++
			case e.Passed:
				passed++
			default:
				failed++
			}
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:   total,
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Files:    f.files,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
