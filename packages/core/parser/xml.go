package parser

import "strings"

type xmlTagKind int

const (
	xmlTagOpen xmlTagKind = iota
	xmlTagClose
	xmlTagSelfClose
	xmlTagDecl
)

// xmlText captures a well-formed XML document verbatim by scanning
// balanced tags. Validation is shallow: tags must nest, nothing more.
func xmlText(r *Reader) (string, *Error) {
	if c, ok := r.Peek(); !ok || c != '<' {
		return "", newError(r.Pos(), true, KindExpecting, "<")
	}
	var sb strings.Builder
	depth := 0
	for {
		c, ok := r.Peek()
		if !ok {
			return "", newError(r.Pos(), false, KindXML, "")
		}
		if c == '<' {
			tag, kind, err := xmlTag(r)
			if err != nil {
				return "", err
			}
			sb.WriteString(tag)
			switch kind {
			case xmlTagOpen:
				depth++
			case xmlTagClose:
				depth--
				if depth < 0 {
					return "", newError(r.Pos(), false, KindXML, "")
				}
				if depth == 0 {
					return sb.String(), nil
				}
			case xmlTagSelfClose:
				if depth == 0 {
					return sb.String(), nil
				}
			}
			continue
		}
		if depth == 0 {
			// Only whitespace may appear between a declaration and
			// the root element.
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				return "", newError(r.Pos(), false, KindXML, "")
			}
		}
		r.Read()
		sb.WriteRune(c)
	}
}

// xmlTag reads one <...> group, honoring quotes inside the tag.
func xmlTag(r *Reader) (string, xmlTagKind, *Error) {
	var sb strings.Builder
	r.Read()
	sb.WriteRune('<')
	kind := xmlTagOpen
	switch r.PeekN(1) {
	case "/":
		kind = xmlTagClose
	case "?", "!":
		kind = xmlTagDecl
	}
	var quote rune
	var last rune
	for {
		c, ok := r.Read()
		if !ok {
			return "", 0, newError(r.Pos(), false, KindXML, "")
		}
		sb.WriteRune(c)
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			last = c
			continue
		}
		if c == '>' {
			if kind == xmlTagOpen && last == '/' {
				kind = xmlTagSelfClose
			}
			return sb.String(), kind, nil
		}
		last = c
	}
}
