package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseVariable splits a name=value pair as given to --variable. The
// value is typed with ParseValue.
func ParseVariable(s string) (string, any, error) {
	name, value, found := strings.Cut(s, "=")
	if !found {
		return "", nil, fmt.Errorf("invalid variable %q: expected name=value", s)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("invalid variable %q: empty name", s)
	}
	return name, ParseValue(strings.TrimSpace(value)), nil
}

// ParseValue interprets a variable value. Null, booleans and numbers
// become typed values; a quoted value is the quoted text itself;
// anything else stays a string.
func ParseValue(s string) any {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// LoadVariablesFile parses a variables file with one name=value pair
// per line. Blank lines and # comments are skipped.
func LoadVariablesFile(path string) (map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open variables file: %w", err)
	}
	defer file.Close()

	result := make(map[string]any)
	scanner := bufio.NewScanner(file)
	lineno := 0

	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, value, err := ParseVariable(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineno, err)
		}
		result[name] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading variables file: %w", err)
	}

	return result, nil
}
