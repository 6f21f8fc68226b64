package parser

import "strings"

// jsonValue parses a JSON value, preserving whitespace verbatim in the
// AST. Trailing whitespace after the value is left unconsumed.
func jsonValue(r *Reader) (*JSONValue, *Error) {
	return choice(r, jsonNull, jsonBoolean, jsonString, jsonNumber, jsonList, jsonObject)
}

func jsonNull(r *Reader) (*JSONValue, *Error) {
	if err := tryLiteral(r, "null"); err != nil {
		return nil, err
	}
	return &JSONValue{Kind: JSONNull}, nil
}

func jsonBoolean(r *Reader) (*JSONValue, *Error) {
	if err := tryLiteral(r, "true"); err == nil {
		return &JSONValue{Kind: JSONBoolean, Bool: true}, nil
	}
	if err := tryLiteral(r, "false"); err != nil {
		return nil, err
	}
	return &JSONValue{Kind: JSONBoolean, Bool: false}, nil
}

func jsonString(r *Reader) (*JSONValue, *Error) {
	t, err := quotedTemplate(r)
	if err != nil {
		return nil, err
	}
	return &JSONValue{Kind: JSONString, Str: t}, nil
}

// jsonNumber keeps the literal text as written.
func jsonNumber(r *Reader) (*JSONValue, *Error) {
	start := r.Pos()
	var sb strings.Builder
	if c, ok := r.Peek(); ok && c == '-' {
		r.Read()
		sb.WriteRune('-')
	}
	digits := r.ReadWhile(isDigit)
	if digits == "" {
		return nil, newError(start, true, KindExpecting, "number")
	}
	sb.WriteString(digits)
	if c, ok := r.Peek(); ok && c == '.' {
		r.Read()
		sb.WriteRune('.')
		frac := r.ReadWhile(isDigit)
		if frac == "" {
			return nil, newError(r.Pos(), false, KindExpecting, "digit")
		}
		sb.WriteString(frac)
	}
	if c, ok := r.Peek(); ok && (c == 'e' || c == 'E') {
		r.Read()
		sb.WriteRune(c)
		if c2, ok := r.Peek(); ok && (c2 == '+' || c2 == '-') {
			r.Read()
			sb.WriteRune(c2)
		}
		exp := r.ReadWhile(isDigit)
		if exp == "" {
			return nil, newError(r.Pos(), false, KindExpecting, "digit")
		}
		sb.WriteString(exp)
	}
	return &JSONValue{Kind: JSONNumber, Number: sb.String()}, nil
}

// jsonWhitespace consumes JSON insignificant whitespace, newlines
// included, and returns it as written.
func jsonWhitespace(r *Reader) string {
	return r.ReadWhile(func(c rune) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r'
	})
}

func jsonList(r *Reader) (*JSONValue, *Error) {
	if err := tryLiteral(r, "["); err != nil {
		return nil, err
	}
	space0 := jsonWhitespace(r)
	if err := tryLiteral(r, "]"); err == nil {
		return &JSONValue{Kind: JSONList, Space0: space0}, nil
	}
	var elements []*JSONListElement
	for {
		el, err := jsonListElement(r)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if err := tryLiteral(r, ","); err == nil {
			continue
		}
		if err := literal(r, "]"); err != nil {
			return nil, err
		}
		break
	}
	return &JSONValue{Kind: JSONList, Space0: space0, Elements: elements}, nil
}

func jsonListElement(r *Reader) (*JSONListElement, *Error) {
	space0 := jsonWhitespace(r)
	v, err := nonrecover(r, jsonValue)
	if err != nil {
		return nil, err
	}
	space1 := jsonWhitespace(r)
	return &JSONListElement{Space0: space0, Value: v, Space1: space1}, nil
}

func jsonObject(r *Reader) (*JSONValue, *Error) {
	if err := tryLiteral(r, "{"); err != nil {
		return nil, err
	}
	space0 := jsonWhitespace(r)
	if err := tryLiteral(r, "}"); err == nil {
		return &JSONValue{Kind: JSONObject, Space0: space0}, nil
	}
	var members []*JSONObjectMember
	for {
		m, err := jsonObjectMember(r)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
		if err := tryLiteral(r, ","); err == nil {
			continue
		}
		if err := literal(r, "}"); err != nil {
			return nil, err
		}
		break
	}
	return &JSONValue{Kind: JSONObject, Space0: space0, Members: members}, nil
}

func jsonObjectMember(r *Reader) (*JSONObjectMember, *Error) {
	space0 := jsonWhitespace(r)
	name, encoded, err := jsonKey(r)
	if err != nil {
		return nil, err
	}
	space1 := jsonWhitespace(r)
	if err := literal(r, ":"); err != nil {
		return nil, err
	}
	space2 := jsonWhitespace(r)
	v, err := nonrecover(r, jsonValue)
	if err != nil {
		return nil, err
	}
	space3 := jsonWhitespace(r)
	return &JSONObjectMember{
		Space0:      space0,
		Name:        name,
		NameEncoded: encoded,
		Space1:      space1,
		Space2:      space2,
		Value:       v,
		Space3:      space3,
	}, nil
}

// jsonKey parses an object member name. Unlike string values, keys are
// plain strings without template expressions.
func jsonKey(r *Reader) (string, string, *Error) {
	if err := literal(r, `"`); err != nil {
		return "", "", err
	}
	var name, encoded strings.Builder
	for {
		c, ok := r.Peek()
		if !ok || c == '\n' || c == '\r' {
			return "", "", newError(r.Pos(), false, KindExpecting, `"`)
		}
		if c == '"' {
			r.Read()
			return name.String(), encoded.String(), nil
		}
		if c == '\\' {
			decoded, raw, err := escapeChar(r)
			if err != nil {
				return "", "", err
			}
			name.WriteString(decoded)
			encoded.WriteString(raw)
			continue
		}
		r.Read()
		name.WriteRune(c)
		encoded.WriteRune(c)
	}
}
