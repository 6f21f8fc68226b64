package parser

import (
	"encoding/base64"
	"strings"
)

// bytes parses a body in one of its five forms. Alternatives are tried
// in order; the file form runs last, so an input matching nothing
// reports its recoverable error.
func bytes(r *Reader) (*Bytes, *Error) {
	return choice(r, multilineBytes, jsonBytes, xmlBytes, base64Bytes, fileBytes)
}

func jsonBytes(r *Reader) (*Bytes, *Error) {
	v, err := jsonValue(r)
	if err != nil {
		return nil, err
	}
	return &Bytes{Kind: BytesJSON, JSON: v}, nil
}

func xmlBytes(r *Reader) (*Bytes, *Error) {
	v, err := xmlText(r)
	if err != nil {
		return nil, err
	}
	return &Bytes{Kind: BytesXML, XML: v}, nil
}

func multilineBytes(r *Reader) (*Bytes, *Error) {
	if err := tryLiteral(r, "```"); err != nil {
		return nil, err
	}
	m := &MultilineString{}
	save := r.State()
	lang := r.ReadWhile(func(c rune) bool { return c >= 'a' && c <= 'z' })
	if lang != "" {
		if c, ok := r.Peek(); ok && (c == '\n' || c == '\r') {
			m.Lang = lang
		} else {
			r.Restore(save)
		}
	}
	nlStart := r.State()
	if err := tryNewline(r); err == nil {
		m.Newline = Whitespace{
			Value:      string(r.buffer[nlStart.Cursor:r.Cursor()]),
			SourceInfo: SourceInfo{Start: nlStart.Pos, End: r.Pos()},
		}
	} else {
		m.Newline = Whitespace{SourceInfo: SourceInfo{Start: nlStart.Pos, End: nlStart.Pos}}
	}
	value, err := multilineContent(r)
	if err != nil {
		return nil, err
	}
	m.Value = value
	return &Bytes{Kind: BytesMultiline, Multiline: m}, nil
}

// multilineContent measures the raw text up to the closing fence,
// rewinds, and re-parses it as a template within that bound. A missing
// fence is fatal at the position the scan stopped.
func multilineContent(r *Reader) (*Template, *Error) {
	save := r.State()
	count := 0
	for {
		if r.PeekN(3) == "```" {
			break
		}
		if _, ok := r.Read(); !ok {
			return nil, newError(r.Pos(), false, KindExpecting, "```")
		}
		count++
	}
	r.Restore(save)
	start := r.Pos()
	elements, err := templateScan(r, count, nil, false)
	if err != nil {
		return nil, err
	}
	end := r.Pos()
	if err := literal(r, "```"); err != nil {
		return nil, err
	}
	return &Template{
		Elements:   elements,
		SourceInfo: SourceInfo{Start: start, End: end},
	}, nil
}

func base64Bytes(r *Reader) (*Bytes, *Error) {
	if err := tryLiteral(r, "base64"); err != nil {
		return nil, err
	}
	if err := literal(r, ","); err != nil {
		return nil, err
	}
	space0 := zeroOrMoreSpaces(r)
	save := r.State()
	decoded := base64Value(r)
	count := r.Cursor() - save.Cursor
	r.Restore(save)
	encoded := r.ReadN(count)
	space1 := zeroOrMoreSpaces(r)
	if err := literal(r, ";"); err != nil {
		return nil, err
	}
	return &Bytes{Kind: BytesBase64, Base64: &Base64Data{
		Space0:  space0,
		Decoded: decoded,
		Encoded: encoded,
		Space1:  space1,
	}}, nil
}

// base64Value consumes the base64 alphabet with interior whitespace.
// Whitespace is kept only when more encoded characters follow, so
// trailing spaces are left for the caller.
func base64Value(r *Reader) []byte {
	var sb strings.Builder
	for {
		save := r.State()
		r.ReadWhile(func(c rune) bool {
			return c == ' ' || c == '\t' || c == '\n' || c == '\r'
		})
		c, ok := r.Peek()
		if !ok || !isBase64Char(c) {
			r.Restore(save)
			break
		}
		r.Read()
		sb.WriteRune(c)
	}
	decoded, err := base64.StdEncoding.DecodeString(sb.String())
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(sb.String())
		if err != nil {
			return nil
		}
	}
	return decoded
}

func isBase64Char(c rune) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' || c == '+' || c == '/' || c == '='
}

func fileBytes(r *Reader) (*Bytes, *Error) {
	if err := tryLiteral(r, "file"); err != nil {
		return nil, err
	}
	if err := literal(r, ","); err != nil {
		return nil, err
	}
	space0 := zeroOrMoreSpaces(r)
	f, err := filename(r)
	if err != nil {
		return nil, err
	}
	space1 := zeroOrMoreSpaces(r)
	if err := literal(r, ";"); err != nil {
		return nil, err
	}
	return &Bytes{Kind: BytesFile, File: &FileData{
		Space0:   space0,
		Filename: f,
		Space1:   space1,
	}}, nil
}
