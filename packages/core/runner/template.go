package runner

import (
	"strconv"
	"strings"

	"github.com/volleyhq/volley/packages/builtin"
	"github.com/volleyhq/volley/packages/core/parser"
)

// resolver renders templates against one variable environment. One
// resolver serves one entry run.
type resolver struct {
	vars       map[string]any
	generators *builtin.Registry
}

func newResolver(vars map[string]any) *resolver {
	return &resolver{
		vars:       vars,
		generators: builtin.NewRegistry(),
	}
}

// template renders t with literal parts in decoded form. A nil
// template renders as the empty string.
func (rs *resolver) template(t *parser.Template) (string, *Error) {
	return rs.render(t, false)
}

// templateEncoded renders t with literal parts exactly as written in
// the source, escape sequences included. JSON body reconstruction uses
// this so resolved bodies stay valid JSON.
func (rs *resolver) templateEncoded(t *parser.Template) (string, *Error) {
	return rs.render(t, true)
}

func (rs *resolver) render(t *parser.Template, encoded bool) (string, *Error) {
	if t == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, el := range t.Elements {
		switch el.Kind {
		case parser.ElementString:
			if encoded {
				sb.WriteString(el.Encoded)
			} else {
				sb.WriteString(el.Value)
			}
		case parser.ElementExpression:
			s, err := rs.expr(el.Expr)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}

// expr resolves one {{name}} expression. Generators win over variables
// with the same name.
func (rs *resolver) expr(e *parser.Expr) (string, *Error) {
	if v, ok := rs.generators.Call(e.Name); ok {
		s, ok := renderValue(v)
		if !ok {
			return "", templateError(e.SourceInfo.Start, "generator %q produced a value that cannot be rendered as text", e.Name)
		}
		return s, nil
	}
	v, ok := rs.vars[e.Name]
	if !ok {
		return "", templateError(e.SourceInfo.Start, "variable %q is not defined", e.Name)
	}
	s, ok := renderValue(v)
	if !ok {
		return "", templateError(e.SourceInfo.Start, "variable %q cannot be rendered as text", e.Name)
	}
	return s, nil
}

// renderValue turns a variable value into template text. Collections
// have no text form and report false.
func renderValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "null", true
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}
