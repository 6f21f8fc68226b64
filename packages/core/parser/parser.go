package parser

import (
	"fmt"
	"os"
)

func parseFile(r *Reader) (*File, *Error) {
	entries, err := zeroOrMore(r, parseEntry)
	if err != nil {
		return nil, err
	}
	optionalLineTerminators(r)
	if !r.EOF() {
		return nil, newError(r.Pos(), false, KindMethod, "")
	}
	return &File{Entries: entries}, nil
}

// ParseString parses a volley document.
func ParseString(input string) (*File, error) {
	f, err := parseFile(NewReader(input))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, perr := parseFile(NewReader(string(data)))
	if perr != nil {
		return nil, fmt.Errorf("%s:%w", path, perr)
	}
	f.Path = path
	return f, nil
}
