package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/expr-lang/expr"
	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/http"
	"github.com/volleyhq/volley/packages/log"
)

// Options configures one file run.
type Options struct {
	// Variables seeds the variable environment. The map is mutated in
	// place as entries capture values.
	Variables map[string]any
	// FailFast stops the file at the first failed entry.
	FailFast bool
}

// RunFile executes every entry of a parsed file in order against one
// client. Entries are isolated: a failed entry never stops the ones
// after it unless FailFast is set, and the variable environment keeps
// whatever state existed before the failure.
func RunFile(ctx context.Context, file *parser.File, client *http.Client, opts *Options, logger log.Logger) *FileResult {
	if opts == nil {
		opts = &Options{}
	}
	vars := opts.Variables
	if vars == nil {
		vars = make(map[string]any)
	}
	contextDir := filepath.Dir(file.Path)

	start := time.Now()
	result := &FileResult{Filename: file.Path}
	for i, entry := range file.Entries {
		index := i + 1

		skip, serr := shouldSkip(entry, vars)
		if serr != nil {
			result.Entries = append(result.Entries, &EntryResult{Index: index, Errors: []*Error{serr}})
			result.Failed++
			if opts.FailFast {
				break
			}
			continue
		}
		if skip {
			logger.Verbose("skipping entry %d", index)
			result.Entries = append(result.Entries, &EntryResult{Index: index, Skipped: true})
			result.Skipped++
			continue
		}

		entryResult := Run(ctx, entry, client, index, vars, contextDir, logger)
		result.Entries = append(result.Entries, entryResult)
		if entryResult.Success() {
			result.Passed++
		} else {
			result.Failed++
			if opts.FailFast {
				break
			}
		}
	}
	result.Duration = time.Since(start)
	return result
}

// shouldSkip evaluates the entry's skip-when option, if any, against
// the current variables. A broken expression is an entry error, not a
// skip.
func shouldSkip(entry *parser.Entry, vars map[string]any) (bool, *Error) {
	for _, o := range entry.Request.Options {
		if o.Kind != parser.OptionSkipWhen {
			continue
		}
		program, err := expr.Compile(o.StringValue, expr.Env(vars), expr.AsBool())
		if err != nil {
			return false, &Error{
				Kind:    ErrorExpression,
				Pos:     o.SourceInfo.Start,
				Message: fmt.Sprintf("skip-when %q: %s", o.StringValue, err),
			}
		}
		output, err := expr.Run(program, vars)
		if err != nil {
			return false, &Error{
				Kind:    ErrorExpression,
				Pos:     o.SourceInfo.Start,
				Message: fmt.Sprintf("skip-when %q: %s", o.StringValue, err),
			}
		}
		skip, ok := output.(bool)
		if !ok {
			return false, &Error{
				Kind:    ErrorExpression,
				Pos:     o.SourceInfo.Start,
				Message: fmt.Sprintf("skip-when %q did not return a boolean", o.StringValue),
			}
		}
		return skip, nil
	}
	return false, nil
}
