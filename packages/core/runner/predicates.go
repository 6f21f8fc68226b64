package runner

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/xeipuuv/gojsonschema"
)

// predicate applies one predicate to a query result and records the
// outcome on res. A predicate that cannot be applied to the value at
// hand (wrong type, bad regex, unreadable schema) fails with a message;
// negation does not turn that into a pass.
func (rs *resolver) predicate(res *AssertResult, actual any, found bool, not bool, p *parser.Predicate, contextDir string) {
	var expected any
	if p.Value != nil {
		v, verr := rs.predicateValue(p.Value)
		if verr != nil {
			res.Message = verr.Message
			return
		}
		expected = v
	}
	res.Expected = expectedDisplay(p.Kind, expected, not)
	res.Actual = actualDisplay(actual, found)

	if p.Kind == parser.PredicateExists {
		res.Success = found != not
		return
	}
	if !found {
		res.Message = "no value for the query"
		return
	}

	ok, msg := evalPredicate(actual, expected, p.Kind, contextDir)
	if msg != "" {
		res.Message = msg
		return
	}
	if not {
		ok = !ok
	}
	res.Success = ok

	// countEquals reports the computed count, not the raw value.
	if p.Kind == parser.PredicateCountEquals {
		if n, countable := countOf(actual); countable {
			res.Actual = "a count of " + strconv.Itoa(n)
		}
	}
}

func (rs *resolver) predicateValue(v *parser.PredicateValue) (any, *Error) {
	switch v.Kind {
	case parser.ValueNumber:
		return v.Number, nil
	case parser.ValueBool:
		return v.Bool, nil
	case parser.ValueNull:
		return nil, nil
	case parser.ValueString:
		s, err := rs.template(v.Str)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}

func evalPredicate(actual, expected any, kind parser.PredicateKind, contextDir string) (bool, string) {
	switch kind {
	case parser.PredicateEquals:
		return valueEqual(actual, expected), ""
	case parser.PredicateGreaterThan, parser.PredicateGreaterOrEqual,
		parser.PredicateLessThan, parser.PredicateLessOrEqual:
		return compareNumeric(actual, expected, kind)
	case parser.PredicateStartsWith:
		s, sub, msg := stringOperands(actual, expected)
		if msg != "" {
			return false, msg
		}
		return strings.HasPrefix(s, sub), ""
	case parser.PredicateEndsWith:
		s, sub, msg := stringOperands(actual, expected)
		if msg != "" {
			return false, msg
		}
		return strings.HasSuffix(s, sub), ""
	case parser.PredicateContains:
		s, sub, msg := stringOperands(actual, expected)
		if msg != "" {
			return false, msg
		}
		return strings.Contains(s, sub), ""
	case parser.PredicateIncludes:
		list, ok := actual.([]any)
		if !ok {
			return false, fmt.Sprintf("expected a list, got %s", typeName(actual))
		}
		for _, item := range list {
			if valueEqual(item, expected) {
				return true, ""
			}
		}
		return false, ""
	case parser.PredicateMatches:
		s, ok := actual.(string)
		if !ok {
			return false, fmt.Sprintf("expected a string, got %s", typeName(actual))
		}
		pattern, ok := expected.(string)
		if !ok {
			return false, "predicate value is not a string"
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Sprintf("invalid regex pattern: %v", err)
		}
		return re.MatchString(s), ""
	case parser.PredicateMatchesSchema:
		schema, ok := expected.(string)
		if !ok {
			return false, "predicate value is not a string"
		}
		return matchesSchema(actual, schema, contextDir)
	case parser.PredicateCountEquals:
		n, countable := countOf(actual)
		if !countable {
			return false, fmt.Sprintf("cannot count a %s", typeName(actual))
		}
		e, ok := asNumber(expected)
		if !ok {
			return false, "predicate value is not a number"
		}
		return float64(n) == e, ""
	case parser.PredicateIsInteger:
		n, ok := asNumber(actual)
		return ok && n == math.Trunc(n), ""
	case parser.PredicateIsFloat:
		n, ok := asNumber(actual)
		return ok && n != math.Trunc(n), ""
	case parser.PredicateIsBoolean:
		_, ok := actual.(bool)
		return ok, ""
	case parser.PredicateIsString:
		_, ok := actual.(string)
		return ok, ""
	case parser.PredicateIsCollection:
		return isCollection(actual), ""
	default:
		return false, fmt.Sprintf("unknown predicate: %v", kind)
	}
}

// valueEqual compares two values with JSON semantics: numbers compare
// by value, everything else by deep equality. Types never coerce.
func valueEqual(a, b any) bool {
	an, aNum := asNumber(a)
	bn, bNum := asNumber(b)
	if aNum || bNum {
		return aNum && bNum && an == bn
	}
	return reflect.DeepEqual(a, b)
}

func compareNumeric(actual, expected any, kind parser.PredicateKind) (bool, string) {
	a, ok := asNumber(actual)
	if !ok {
		return false, fmt.Sprintf("expected a number, got %s", typeName(actual))
	}
	e, ok := asNumber(expected)
	if !ok {
		return false, "predicate value is not a number"
	}
	switch kind {
	case parser.PredicateGreaterThan:
		return a > e, ""
	case parser.PredicateGreaterOrEqual:
		return a >= e, ""
	case parser.PredicateLessThan:
		return a < e, ""
	default:
		return a <= e, ""
	}
}

func stringOperands(actual, expected any) (string, string, string) {
	s, ok := actual.(string)
	if !ok {
		return "", "", fmt.Sprintf("expected a string, got %s", typeName(actual))
	}
	sub, ok := expected.(string)
	if !ok {
		return "", "", "predicate value is not a string"
	}
	return s, sub, ""
}

func matchesSchema(actual any, schema string, contextDir string) (bool, string) {
	var schemaLoader gojsonschema.JSONLoader
	if strings.HasPrefix(strings.TrimSpace(schema), "{") {
		schemaLoader = gojsonschema.NewStringLoader(schema)
	} else {
		path := schema
		if !filepath.IsAbs(path) && contextDir != "" {
			path = filepath.Join(contextDir, path)
		}
		if err := validatePathWithinBase(path, contextDir); err != nil {
			return false, err.Error()
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return false, fmt.Sprintf("failed to read schema file: %v", err)
		}
		schemaLoader = gojsonschema.NewBytesLoader(data)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		return false, fmt.Sprintf("failed to marshal value: %v", err)
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(actualJSON))
	if err != nil {
		return false, fmt.Sprintf("schema validation error: %v", err)
	}
	return result.Valid(), ""
}

// asNumber accepts the numeric shapes that flow out of queries and the
// grammar. Strings never coerce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func countOf(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return len(x), true
	case []any:
		return len(x), true
	case map[string]any:
		return len(x), true
	}
	return 0, false
}

func isCollection(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	}
	return false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return reflect.TypeOf(v).String()
	}
}

// formatValue renders a value for display in assertion results.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case []any, map[string]any:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func actualDisplay(v any, found bool) string {
	if !found {
		return "none"
	}
	return formatValue(v)
}

// expectedDisplay describes what the predicate wanted, for failure
// reports.
func expectedDisplay(kind parser.PredicateKind, expected any, not bool) string {
	var desc string
	switch kind {
	case parser.PredicateEquals:
		desc = formatValue(expected)
	case parser.PredicateGreaterThan:
		desc = "greater than " + formatValue(expected)
	case parser.PredicateGreaterOrEqual:
		desc = "greater than or equal to " + formatValue(expected)
	case parser.PredicateLessThan:
		desc = "less than " + formatValue(expected)
	case parser.PredicateLessOrEqual:
		desc = "less than or equal to " + formatValue(expected)
	case parser.PredicateStartsWith:
		desc = "starts with " + formatValue(expected)
	case parser.PredicateEndsWith:
		desc = "ends with " + formatValue(expected)
	case parser.PredicateContains:
		desc = "contains " + formatValue(expected)
	case parser.PredicateIncludes:
		desc = "includes " + formatValue(expected)
	case parser.PredicateMatches:
		desc = "matches /" + formatValue(expected) + "/"
	case parser.PredicateMatchesSchema:
		desc = "matches the schema"
	case parser.PredicateExists:
		if not {
			return "no value"
		}
		return "a value"
	case parser.PredicateCountEquals:
		desc = "a count of " + formatValue(expected)
	case parser.PredicateIsInteger:
		desc = "an integer"
	case parser.PredicateIsFloat:
		desc = "a float"
	case parser.PredicateIsBoolean:
		desc = "a boolean"
	case parser.PredicateIsString:
		desc = "a string"
	case parser.PredicateIsCollection:
		desc = "a collection"
	}
	if not {
		return "not " + desc
	}
	return desc
}
