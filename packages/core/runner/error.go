package runner

import (
	"fmt"

	"github.com/volleyhq/volley/packages/core/parser"
)

type ErrorKind int

const (
	// ErrorTemplateVariable is an undefined or unrenderable variable in
	// a template.
	ErrorTemplateVariable ErrorKind = iota
	// ErrorFileReference is a body or multipart file that could not be
	// read from the context directory.
	ErrorFileReference
	// ErrorHTTPConnection is a transport-level failure; URL is always set.
	ErrorHTTPConnection
	// ErrorCapture is a capture rule that produced no value.
	ErrorCapture
	// ErrorAssert is an assertion failure.
	ErrorAssert
	// ErrorExpression is a skip-when expression that failed to compile
	// or evaluate.
	ErrorExpression
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorTemplateVariable:
		return "template"
	case ErrorFileReference:
		return "file"
	case ErrorHTTPConnection:
		return "connection"
	case ErrorCapture:
		return "capture"
	case ErrorAssert:
		return "assert"
	case ErrorExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// Error is one failure inside an entry. Errors are data: they ride in
// the EntryResult and never abort the surrounding file.
type Error struct {
	Kind    ErrorKind
	Message string
	URL     string          // connection errors only
	Pos     parser.Position // zero when no source position applies
}

func (e *Error) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return e.Message
}

func templateError(pos parser.Position, format string, args ...any) *Error {
	return &Error{Kind: ErrorTemplateVariable, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func fileError(pos parser.Position, format string, args ...any) *Error {
	return &Error{Kind: ErrorFileReference, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func connectionError(pos parser.Position, url string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: ErrorHTTPConnection, Pos: pos, URL: url, Message: msg}
}

func captureError(pos parser.Position, format string, args ...any) *Error {
	return &Error{Kind: ErrorCapture, Pos: pos, Message: fmt.Sprintf(format, args...)}
}
