package parser

import (
	"strconv"
	"strings"
	"unicode"
)

// templateScan parses template elements until the stop predicate, end
// of input, or, when limit >= 0, until limit runes have been consumed.
func templateScan(r *Reader, limit int, stop func(rune) bool, escapes bool) ([]*TemplateElement, *Error) {
	var elements []*TemplateElement
	base := r.Cursor()
	var value, encoded strings.Builder
	flush := func() {
		if encoded.Len() > 0 {
			elements = append(elements, &TemplateElement{
				Kind:    ElementString,
				Value:   value.String(),
				Encoded: encoded.String(),
			})
			value.Reset()
			encoded.Reset()
		}
	}
	for {
		if limit >= 0 && r.Cursor()-base >= limit {
			break
		}
		if r.PeekN(2) == "{{" {
			flush()
			expr, err := parseExpr(r)
			if err != nil {
				return nil, err
			}
			elements = append(elements, &TemplateElement{Kind: ElementExpression, Expr: expr})
			continue
		}
		c, ok := r.Peek()
		if !ok || (stop != nil && stop(c)) {
			break
		}
		if escapes && c == '\\' {
			decoded, raw, err := escapeChar(r)
			if err != nil {
				return nil, err
			}
			value.WriteString(decoded)
			encoded.WriteString(raw)
			continue
		}
		r.Read()
		value.WriteRune(c)
		encoded.WriteRune(c)
	}
	flush()
	return elements, nil
}

// parseExpr parses a {{name}} expression. Everything after the opening
// braces is committed.
func parseExpr(r *Reader) (*Expr, *Error) {
	start := r.Pos()
	if err := literal(r, "{{"); err != nil {
		return nil, err
	}
	space0 := zeroOrMoreSpaces(r)
	nameStart := r.Pos()
	name := r.ReadWhile(func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-'
	})
	if name == "" {
		return nil, newError(nameStart, false, KindTemplateVariable, "")
	}
	space1 := zeroOrMoreSpaces(r)
	if err := literal(r, "}}"); err != nil {
		return nil, err
	}
	return &Expr{
		Space0:     space0,
		Name:       name,
		Space1:     space1,
		SourceInfo: SourceInfo{Start: start, End: r.Pos()},
	}, nil
}

func escapeChar(r *Reader) (string, string, *Error) {
	start := r.Pos()
	r.Read()
	c, ok := r.Read()
	if !ok {
		return "", "", newError(start, false, KindEscapeChar, "")
	}
	switch c {
	case '"':
		return `"`, `\"`, nil
	case '\\':
		return `\`, `\\`, nil
	case '/':
		return "/", `\/`, nil
	case '#':
		return "#", `\#`, nil
	case 'b':
		return "\b", `\b`, nil
	case 'f':
		return "\f", `\f`, nil
	case 'n':
		return "\n", `\n`, nil
	case 'r':
		return "\r", `\r`, nil
	case 't':
		return "\t", `\t`, nil
	case 'u':
		hex := r.ReadN(4)
		if len(hex) != 4 {
			return "", "", newError(start, false, KindUnicode, "")
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return "", "", newError(start, false, KindUnicode, "")
		}
		return string(rune(n)), `\u` + hex, nil
	default:
		return "", "", newError(start, false, KindEscapeChar, "")
	}
}

// quotedTemplate parses a double-quoted template. A missing opening
// quote is recoverable; everything after it is committed. The template
// span excludes the quotes.
func quotedTemplate(r *Reader) (*Template, *Error) {
	if err := tryLiteral(r, `"`); err != nil {
		return nil, err
	}
	start := r.Pos()
	elements, err := templateScan(r, -1, func(c rune) bool {
		return c == '"' || c == '\n' || c == '\r'
	}, true)
	if err != nil {
		return nil, err
	}
	end := r.Pos()
	if err := literal(r, `"`); err != nil {
		return nil, err
	}
	return &Template{
		Quotes:     true,
		Elements:   elements,
		SourceInfo: SourceInfo{Start: start, End: end},
	}, nil
}

// unquotedTemplate parses a template running to the end of the line or
// a comment, with trailing spaces excluded. The text is measured first
// and then re-parsed within that bound so the reader never needs to
// back up over consumed spaces.
func unquotedTemplate(r *Reader) (*Template, *Error) {
	save := r.State()
	length, content := 0, 0
	for {
		c, ok := r.Peek()
		if !ok || c == '\n' || c == '\r' || c == '#' {
			break
		}
		if c == '\\' {
			r.Read()
			if _, ok := r.Read(); !ok {
				length++
				content = length
				break
			}
			length += 2
			content = length
			continue
		}
		r.Read()
		length++
		if !isSpace(c) {
			content = length
		}
	}
	r.Restore(save)
	start := r.Pos()
	elements, err := templateScan(r, content, nil, true)
	if err != nil {
		return nil, err
	}
	return &Template{
		Elements:   elements,
		SourceInfo: SourceInfo{Start: start, End: r.Pos()},
	}, nil
}
