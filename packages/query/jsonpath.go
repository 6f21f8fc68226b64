package query

import (
	"fmt"
	"strings"
)

// gjsonPath converts a JSONPath expression to a gjson path. The
// supported subset is root ($), dot and bracket member access, numeric
// indexes and the [*] wildcard. Recursive descent and filters are
// rejected.
func gjsonPath(expr string) (string, error) {
	if !strings.HasPrefix(expr, "$") {
		return "", fmt.Errorf("jsonpath %q: must start with $", expr)
	}
	s := expr[1:]
	var tokens []string
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			if i+1 < len(s) && s[i+1] == '.' {
				return "", fmt.Errorf("jsonpath %q: recursive descent is not supported", expr)
			}
			i++
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			if j == i {
				return "", fmt.Errorf("jsonpath %q: empty member name", expr)
			}
			name := s[i:j]
			if name == "*" {
				tokens = append(tokens, "#")
			} else {
				tokens = append(tokens, escapeKey(name))
			}
			i = j
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("jsonpath %q: missing ]", expr)
			}
			inner := s[i+1 : i+end]
			i += end + 1
			token, err := bracketToken(expr, inner)
			if err != nil {
				return "", err
			}
			tokens = append(tokens, token)
		default:
			return "", fmt.Errorf("jsonpath %q: unexpected %q", expr, s[i])
		}
	}
	// A trailing [*] selects the collection itself.
	if n := len(tokens); n > 0 && tokens[n-1] == "#" {
		tokens = tokens[:n-1]
	}
	return strings.Join(tokens, "."), nil
}

func bracketToken(expr, inner string) (string, error) {
	if inner == "*" {
		return "#", nil
	}
	if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') {
		if inner[len(inner)-1] != inner[0] {
			return "", fmt.Errorf("jsonpath %q: unterminated string in brackets", expr)
		}
		return escapeKey(inner[1 : len(inner)-1]), nil
	}
	if inner == "" {
		return "", fmt.Errorf("jsonpath %q: empty brackets", expr)
	}
	for _, c := range inner {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("jsonpath %q: unsupported selector [%s]", expr, inner)
		}
	}
	return inner, nil
}

// escapeKey protects gjson path metacharacters inside member names.
func escapeKey(name string) string {
	var sb strings.Builder
	for _, c := range name {
		switch c {
		case '.', '*', '?', '\\', '|', '#', '@':
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
