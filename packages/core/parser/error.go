package parser

import "fmt"

type ErrorKind int

const (
	KindExpecting ErrorKind = iota
	KindMethod
	KindVersion
	KindStatus
	KindURL
	KindFilename
	KindSection
	KindQuery
	KindPredicate
	KindPredicateValue
	KindOption
	KindTemplateVariable
	KindEscapeChar
	KindUnicode
	KindXML
)

// Error is a parse failure at an exact position. Recoverable means the
// reader was restored and an alternative may still match; a fatal error
// aborts the whole parse.
type Error struct {
	Pos         Position
	Recoverable bool
	Kind        ErrorKind
	Value       string
}

func newError(pos Position, recoverable bool, kind ErrorKind, value string) *Error {
	return &Error{Pos: pos, Recoverable: recoverable, Kind: kind, Value: value}
}

// ToFatal returns a copy of the error with the recoverable flag cleared.
func (e *Error) ToFatal() *Error {
	return &Error{Pos: e.Pos, Recoverable: false, Kind: e.Kind, Value: e.Value}
}

func (e *Error) Message() string {
	switch e.Kind {
	case KindExpecting:
		return fmt.Sprintf("expecting %q", e.Value)
	case KindMethod:
		return "expecting an HTTP method"
	case KindVersion:
		return "expecting a version (HTTP, HTTP/1.0, HTTP/1.1 or HTTP/2)"
	case KindStatus:
		return "expecting a status code or *"
	case KindURL:
		return "expecting a URL"
	case KindFilename:
		return "expecting a filename"
	case KindSection:
		return fmt.Sprintf("unknown section [%s]", e.Value)
	case KindQuery:
		return "expecting a query"
	case KindPredicate:
		return "expecting a predicate"
	case KindPredicateValue:
		return "expecting a predicate value"
	case KindOption:
		return "expecting an option"
	case KindTemplateVariable:
		return "expecting a variable name"
	case KindEscapeChar:
		return "invalid escape sequence"
	case KindUnicode:
		return "invalid unicode escape"
	case KindXML:
		return "invalid XML"
	default:
		return "parse error"
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message())
}
