package runner

import (
	"fmt"

	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/http"
	"github.com/volleyhq/volley/packages/query"
)

// captures evaluates every capture rule in order. The first rule that
// errors or yields no value ends the entry: nothing is reported and the
// variable environment is left untouched. On success the full capture
// list comes back for the caller to commit.
func (rs *resolver) captures(specs []*parser.Capture, resp *http.Response) ([]*CaptureResult, *Error) {
	ev := query.NewEvaluator(resp, rs.vars)
	var out []*CaptureResult
	for _, c := range specs {
		arg, rerr := rs.template(c.Query.Arg)
		if rerr != nil {
			return nil, rerr
		}
		v, found, err := ev.Eval(c.Query.Kind, arg)
		if err != nil {
			return nil, captureError(c.SourceInfo.Start, "capture %q: %s", c.Name, err)
		}
		if !found {
			return nil, captureError(c.SourceInfo.Start, "capture %q: no value for %s", c.Name, queryTitle(c.Query.Kind, arg))
		}
		out = append(out, &CaptureResult{Name: c.Name, Value: v})
	}
	return out, nil
}

// queryTitle renders a query the way it was written, for messages.
func queryTitle(kind parser.QueryKind, arg string) string {
	if !kind.HasArg() {
		return kind.String()
	}
	return fmt.Sprintf("%s %q", kind, arg)
}
