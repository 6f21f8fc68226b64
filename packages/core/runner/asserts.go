package runner

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/http"
	"github.com/volleyhq/volley/packages/query"
)

// asserts evaluates the expected response against the actual one. The
// status line, expected headers and expected body each contribute an
// implicit assertion; the [Asserts] section follows. Every assertion is
// evaluated, failures never stop the ones after them.
func (rs *resolver) asserts(spec *parser.Response, resp *http.Response, contextDir string) []*AssertResult {
	ev := query.NewEvaluator(resp, rs.vars)
	var out []*AssertResult

	if spec.Version.Value != parser.VersionAny {
		out = append(out, assertVersion(spec.Version, resp))
	}
	if !spec.Status.Any {
		out = append(out, assertStatus(spec.Status, resp))
	}
	for _, h := range spec.Headers {
		out = append(out, rs.assertHeader(h, resp))
	}
	if spec.Body != nil {
		out = append(out, rs.assertBody(spec.Body, resp, contextDir))
	}
	for _, a := range spec.Asserts {
		out = append(out, rs.assert(a, ev, contextDir))
	}
	return out
}

func assertVersion(v parser.Version, resp *http.Response) *AssertResult {
	expected := v.Value.String()
	res := &AssertResult{
		Title:    "version equals " + expected,
		Expected: expected,
		Actual:   resp.Proto,
		Pos:      v.SourceInfo.Start,
	}
	res.Success = versionMatches(v.Value, resp.Proto)
	return res
}

// versionMatches compares the declared version against the wire proto.
// Go reports HTTP/2 responses as "HTTP/2.0".
func versionMatches(v parser.VersionValue, proto string) bool {
	switch v {
	case parser.Version10:
		return proto == "HTTP/1.0"
	case parser.Version11:
		return proto == "HTTP/1.1"
	case parser.Version2:
		return proto == "HTTP/2.0" || proto == "HTTP/2"
	default:
		return true
	}
}

func assertStatus(s parser.Status, resp *http.Response) *AssertResult {
	expected := strconv.Itoa(s.Value)
	res := &AssertResult{
		Title:    "status equals " + expected,
		Expected: expected,
		Actual:   strconv.Itoa(resp.StatusCode),
		Pos:      s.SourceInfo.Start,
	}
	res.Success = resp.StatusCode == s.Value
	return res
}

func (rs *resolver) assertHeader(h *parser.KeyValue, resp *http.Response) *AssertResult {
	res := &AssertResult{Pos: h.SourceInfo.Start}
	expected, err := rs.template(h.Value)
	if err != nil {
		res.Title = fmt.Sprintf("header %q", h.Key)
		res.Message = err.Message
		return res
	}
	res.Title = fmt.Sprintf("header %q equals %q", h.Key, expected)
	res.Expected = expected

	values := resp.HeaderValues(h.Key)
	if len(values) == 0 {
		res.Actual = "none"
		res.Message = fmt.Sprintf("header %q not found in the response", h.Key)
		return res
	}
	res.Actual = strings.Join(values, ", ")
	for _, v := range values {
		if v == expected {
			res.Success = true
			return res
		}
	}
	return res
}

func (rs *resolver) assertBody(spec *parser.Bytes, resp *http.Response, contextDir string) *AssertResult {
	res := &AssertResult{Title: "body equals the expected body"}
	expected, _, err := rs.body(spec, contextDir)
	if err != nil {
		res.Message = err.Message
		return res
	}
	res.Expected = string(expected)
	res.Actual = resp.BodyString()
	res.Success = bytes.Equal(expected, resp.Body)
	return res
}

// assert evaluates one explicit assertion. Query and template errors
// fail the assertion; they never end the entry.
func (rs *resolver) assert(a *parser.Assert, ev *query.Evaluator, contextDir string) *AssertResult {
	res := &AssertResult{Pos: a.SourceInfo.Start}

	arg, terr := rs.template(a.Query.Arg)
	if terr != nil {
		res.Title = queryTitle(a.Query.Kind, a.Query.Arg.String())
		res.Message = terr.Message
		return res
	}
	res.Title = assertTitle(a, arg)

	actual, found, err := ev.Eval(a.Query.Kind, arg)
	if err != nil {
		res.Message = err.Error()
		return res
	}
	rs.predicate(res, actual, found, a.Not, a.Predicate, contextDir)
	return res
}

// assertTitle renders the assertion the way it was written.
func assertTitle(a *parser.Assert, arg string) string {
	var sb strings.Builder
	sb.WriteString(queryTitle(a.Query.Kind, arg))
	sb.WriteString(" ")
	if a.Not {
		sb.WriteString("not ")
	}
	sb.WriteString(a.Predicate.Kind.String())
	if a.Predicate.Value != nil {
		sb.WriteString(" ")
		sb.WriteString(predicateValueTitle(a.Predicate.Value))
	}
	return sb.String()
}

func predicateValueTitle(v *parser.PredicateValue) string {
	switch v.Kind {
	case parser.ValueNumber:
		return v.Raw
	case parser.ValueBool:
		return strconv.FormatBool(v.Bool)
	case parser.ValueNull:
		return "null"
	case parser.ValueString:
		return strconv.Quote(v.Str.String())
	default:
		return ""
	}
}
