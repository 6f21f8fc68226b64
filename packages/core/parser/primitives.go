package parser

import (
	"strconv"
	"strings"
	"unicode"
)

// literal expects s exactly. On mismatch it fails fatally with the
// error positioned at the start of the attempt; the reader is left
// where the mismatch was found.
func literal(r *Reader, s string) *Error {
	start := r.Pos()
	for _, expected := range s {
		c, ok := r.Read()
		if !ok || c != expected {
			return newError(start, false, KindExpecting, s)
		}
	}
	return nil
}

// tryLiteral is literal with a recoverable failure and the reader
// restored on mismatch.
func tryLiteral(r *Reader, s string) *Error {
	start := r.State()
	if err := literal(r, s); err != nil {
		r.Restore(start)
		return newError(err.Pos, true, KindExpecting, s)
	}
	return nil
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t'
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// zeroOrMoreSpaces always succeeds, returning the consumed spaces and
// tabs with their span.
func zeroOrMoreSpaces(r *Reader) Whitespace {
	start := r.Pos()
	value := r.ReadWhile(isSpace)
	return Whitespace{Value: value, SourceInfo: SourceInfo{Start: start, End: r.Pos()}}
}

func oneOrMoreSpaces(r *Reader) (Whitespace, *Error) {
	start := r.Pos()
	value := r.ReadWhile(isSpace)
	if value == "" {
		return Whitespace{}, newError(start, true, KindExpecting, "space")
	}
	return Whitespace{Value: value, SourceInfo: SourceInfo{Start: start, End: r.Pos()}}, nil
}

// newline consumes \n or \r\n. Missing newline is fatal.
func newline(r *Reader) (Whitespace, *Error) {
	start := r.Pos()
	if err := tryLiteral(r, "\r\n"); err == nil {
		return Whitespace{Value: "\r\n", SourceInfo: SourceInfo{Start: start, End: r.Pos()}}, nil
	}
	if err := tryLiteral(r, "\n"); err != nil {
		return Whitespace{}, newError(start, false, KindExpecting, "newline")
	}
	return Whitespace{Value: "\n", SourceInfo: SourceInfo{Start: start, End: r.Pos()}}, nil
}

func tryNewline(r *Reader) *Error {
	if err := tryLiteral(r, "\r\n"); err == nil {
		return nil
	}
	return tryLiteral(r, "\n")
}

// comment consumes "#" to the end of the line, excluding the newline.
func comment(r *Reader) (string, *Error) {
	if err := tryLiteral(r, "#"); err != nil {
		return "", err
	}
	value := r.ReadWhile(func(c rune) bool { return c != '\n' && c != '\r' })
	return value, nil
}

// lineTerminator consumes trailing spaces, an optional comment and the
// newline ending the current line. At end of input the newline is not
// required. Anything else on the line is a fatal error.
func lineTerminator(r *Reader) *Error {
	zeroOrMoreSpaces(r)
	if _, err := optional(r, comment); err != nil {
		return err
	}
	if r.EOF() {
		return nil
	}
	_, err := newline(r)
	return err
}

// optionalLineTerminators consumes blank and comment-only lines.
func optionalLineTerminators(r *Reader) {
	for {
		start := r.State()
		zeroOrMoreSpaces(r)
		hasComment := false
		if _, err := comment(r); err == nil {
			hasComment = true
		}
		if err := tryNewline(r); err != nil {
			if hasComment && r.EOF() {
				return
			}
			r.Restore(start)
			return
		}
	}
}

// natural reads an unsigned decimal integer. Recoverable when the next
// rune is not a digit.
func natural(r *Reader) (int, *Error) {
	start := r.Pos()
	digits := r.ReadWhile(isDigit)
	if digits == "" {
		return 0, newError(start, true, KindExpecting, "digit")
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, newError(start, false, KindExpecting, "integer")
	}
	return n, nil
}

// keyString reads a header, parameter or capture name. Recoverable when
// empty so that line-item lists can end cleanly.
func keyString(r *Reader) (string, *Error) {
	start := r.Pos()
	s := r.ReadWhile(func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-' || c == '.'
	})
	if s == "" {
		return "", newError(start, true, KindExpecting, "key")
	}
	return s, nil
}

// filename reads a relative file path. Fatal when empty: the grammar
// only asks for a filename after committing to a file form.
func filename(r *Reader) (Filename, *Error) {
	start := r.Pos()
	value := r.ReadWhile(func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune("./_-", c)
	})
	if value == "" {
		return Filename{}, newError(start, false, KindFilename, "")
	}
	return Filename{Value: value, SourceInfo: SourceInfo{Start: start, End: r.Pos()}}, nil
}
