package query

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jmespath/go-jmespath"
	"github.com/tidwall/gjson"

	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/http"
)

// Evaluator evaluates queries against one exchange. Values use the JSON
// scalar model: nil, bool, float64, string, []any and map[string]any.
type Evaluator struct {
	response *http.Response
	vars     map[string]any
}

func NewEvaluator(resp *http.Response, vars map[string]any) *Evaluator {
	return &Evaluator{response: resp, vars: vars}
}

// Eval runs one query. found is false when the query addresses
// something the exchange does not have (missing header, absent JSON
// node); err reports a malformed query argument or an unreadable body.
func (e *Evaluator) Eval(kind parser.QueryKind, arg string) (value any, found bool, err error) {
	switch kind {
	case parser.QueryStatus:
		return float64(e.response.StatusCode), true, nil
	case parser.QueryDuration:
		return float64(e.response.Duration.Milliseconds()), true, nil
	case parser.QueryBody:
		return e.response.BodyString(), true, nil
	case parser.QueryHeader:
		return e.evalHeader(arg)
	case parser.QueryCookie:
		return e.evalCookie(arg)
	case parser.QueryJSONPath:
		return e.evalJSONPath(arg)
	case parser.QueryJMESPath:
		return e.evalJMESPath(arg)
	case parser.QueryRegex:
		return e.evalRegex(arg)
	case parser.QueryVariable:
		v, ok := e.vars[arg]
		return v, ok, nil
	default:
		return nil, false, fmt.Errorf("unknown query kind %v", kind)
	}
}

func (e *Evaluator) evalHeader(name string) (any, bool, error) {
	values := e.response.HeaderValues(name)
	if len(values) == 0 {
		return nil, false, nil
	}
	return values[0], true, nil
}

func (e *Evaluator) evalCookie(name string) (any, bool, error) {
	for _, c := range e.response.SetCookies() {
		if c.Name == name {
			return c.Value, true, nil
		}
	}
	return nil, false, nil
}

func (e *Evaluator) evalJSONPath(expr string) (any, bool, error) {
	if !gjson.ValidBytes(e.response.Body) {
		return nil, false, fmt.Errorf("response body is not valid JSON")
	}
	path, err := gjsonPath(expr)
	if err != nil {
		return nil, false, err
	}
	doc := gjson.ParseBytes(e.response.Body)
	if path == "" {
		return doc.Value(), true, nil
	}
	result := doc.Get(path)
	if !result.Exists() {
		return nil, false, nil
	}
	return result.Value(), true, nil
}

func (e *Evaluator) evalJMESPath(expr string) (any, bool, error) {
	var doc any
	if err := json.Unmarshal(e.response.Body, &doc); err != nil {
		return nil, false, fmt.Errorf("response body is not valid JSON")
	}
	result, err := jmespath.Search(expr, doc)
	if err != nil {
		return nil, false, fmt.Errorf("jmespath %q: %v", expr, err)
	}
	if result == nil {
		return nil, false, nil
	}
	return result, true, nil
}

// evalRegex matches the body against the pattern, yielding the first
// capture group when the pattern has one and the whole match otherwise.
func (e *Evaluator) evalRegex(pattern string) (any, bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false, fmt.Errorf("invalid regex %q: %v", pattern, err)
	}
	match := re.FindStringSubmatch(e.response.BodyString())
	if match == nil {
		return nil, false, nil
	}
	if len(match) > 1 {
		return match[1], true, nil
	}
	return match[0], true, nil
}
