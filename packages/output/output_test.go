package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/core/runner"
	"github.com/volleyhq/volley/packages/http"
)

func sampleResult() *runner.FileResult {
	return &runner.FileResult{
		Filename: "api.volley",
		Duration: 120 * time.Millisecond,
		Passed:   1,
		Failed:   1,
		Skipped:  1,
		Entries: []*runner.EntryResult{
			{
				Index:   1,
				Request: &http.Request{Method: "GET", URL: "http://example.org/health"},
				Response: &http.Response{
					StatusCode: 200,
					Duration:   40 * time.Millisecond,
				},
				Captures: []*runner.CaptureResult{{Name: "token", Value: "abc"}},
				Asserts:  []*runner.AssertResult{{Title: "status equals 200", Success: true}},
				Elapsed:  40 * time.Millisecond,
			},
			{
				Index:   2,
				Request: &http.Request{Method: "POST", URL: "http://example.org/items"},
				Response: &http.Response{
					StatusCode: 500,
					Duration:   60 * time.Millisecond,
				},
				Asserts: []*runner.AssertResult{{
					Title:    "status equals 201",
					Success:  false,
					Expected: "201",
					Actual:   "500",
				}},
				Errors: []*runner.Error{{
					Kind:    runner.ErrorAssert,
					Message: "assert failure: status equals 201 (actual: 500, expected: 201)",
					Pos:     parser.Position{Line: 7, Column: 1},
				}},
				Elapsed: 60 * time.Millisecond,
			},
			{
				Index:   3,
				Skipped: true,
			},
		},
	}
}

func TestConsoleFormatter(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithVerbose(true))

	f.FormatResult(sampleResult())
	out := buf.String()

	assert.Contains(t, out, "Running: api.volley")
	assert.Contains(t, out, "✓ GET http://example.org/health (40ms)")
	assert.Contains(t, out, "✗ POST http://example.org/items (60ms)")
	assert.Contains(t, out, "7:1: assert failure: status equals 201 (actual: 500, expected: 201)")
	assert.Contains(t, out, "- entry 3")
	assert.Contains(t, out, "token = abc")
	assert.Contains(t, out, "1 passed")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "1 skipped")
	assert.Contains(t, out, "3 total")
}

func TestConsoleFormatterQuietOnSuccess(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf))

	f.FormatResult(sampleResult())
	out := buf.String()

	// Captures only show up in verbose mode.
	assert.NotContains(t, out, "token = abc")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(150*time.Millisecond))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, 3, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Passed)
	assert.Equal(t, 1, out.Summary.Failed)
	assert.Equal(t, 1, out.Summary.Skipped)
	require.Len(t, out.Files, 1)
	require.Len(t, out.Files[0].Entries, 3)

	first := out.Files[0].Entries[0]
	assert.True(t, first.Passed)
	assert.Equal(t, "GET http://example.org/health", first.Name)
	require.NotNil(t, first.Response)
	assert.Equal(t, 200, first.Response.StatusCode)
	require.Len(t, first.Captures, 1)
	assert.Equal(t, "token", first.Captures[0].Name)

	second := out.Files[0].Entries[1]
	assert.False(t, second.Passed)
	require.Len(t, second.Errors, 1)
	assert.Equal(t, "assert", second.Errors[0].Kind)
	assert.Equal(t, 7, second.Errors[0].Line)

	third := out.Files[0].Entries[2]
	assert.True(t, third.Skipped)
	assert.False(t, third.Passed)
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(150*time.Millisecond))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>"))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal([]byte(out[strings.Index(out, "<testsuites"):]), &suites))

	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Skipped)
	require.Len(t, suites.TestSuites, 1)

	suite := suites.TestSuites[0]
	assert.Equal(t, "api.volley", suite.Name)
	require.Len(t, suite.TestCases, 3)

	require.NotNil(t, suite.TestCases[1].Failure)
	assert.Contains(t, suite.TestCases[1].Failure.Content, "status equals 201")
	require.NotNil(t, suite.TestCases[2].Skipped)
}

func TestJUnitFormatterEntryError(t *testing.T) {
	result := &runner.FileResult{
		Filename: "broken.volley",
		Failed:   1,
		Entries: []*runner.EntryResult{{
			Index: 1,
			Errors: []*runner.Error{{
				Kind:    runner.ErrorTemplateVariable,
				Message: `variable "host" is not defined`,
				Pos:     parser.Position{Line: 1, Column: 5},
			}},
		}},
	}

	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatResult(result)
	require.NoError(t, f.Flush(time.Millisecond))

	out := buf.String()
	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal([]byte(out[strings.Index(out, "<testsuites"):]), &suites))

	assert.Equal(t, 1, suites.Errors)
	assert.Equal(t, 0, suites.Failures)
	require.NotNil(t, suites.TestSuites[0].TestCases[0].Error)
	assert.Equal(t, "template", suites.TestSuites[0].TestCases[0].Error.Type)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(150*time.Millisecond))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "TAP version 13", lines[0])
	assert.Equal(t, "1..3", lines[1])
	assert.Equal(t, "ok 1 - GET http://example.org/health", lines[2])
	assert.Equal(t, "not ok 2 - POST http://example.org/items", lines[3])
	assert.Contains(t, buf.String(), "ok 3 - entry 3 # SKIP")
	assert.Contains(t, buf.String(), "failures:")
}
