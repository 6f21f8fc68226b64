package parser

import "strings"

// File is the root of a parsed document.
type File struct {
	Path    string
	Entries []*Entry
}

// Entry is a request and, optionally, the expected response.
type Entry struct {
	Request  *Request
	Response *Response
}

type Request struct {
	Method      string
	URL         *Template
	Headers     []*KeyValue
	QueryParams []*KeyValue
	FormParams  []*KeyValue
	Multipart   []*MultipartParam
	Cookies     []*KeyValue
	Options     []*EntryOption
	Body        *Bytes
	SourceInfo  SourceInfo
}

type Response struct {
	Version    Version
	Status     Status
	Headers    []*KeyValue
	Captures   []*Capture
	Asserts    []*Assert
	Body       *Bytes
	SourceInfo SourceInfo
}

type Version struct {
	Value      VersionValue
	SourceInfo SourceInfo
}

type VersionValue int

const (
	VersionAny VersionValue = iota
	Version10
	Version11
	Version2
)

func (v VersionValue) String() string {
	switch v {
	case Version10:
		return "HTTP/1.0"
	case Version11:
		return "HTTP/1.1"
	case Version2:
		return "HTTP/2"
	default:
		return "HTTP"
	}
}

// Status is the expected status code. Any matches every code.
type Status struct {
	Value      int
	Any        bool
	SourceInfo SourceInfo
}

type KeyValue struct {
	Key        string
	Value      *Template
	SourceInfo SourceInfo
}

// MultipartParam is one line of a [MultipartFormData] section: either a
// text field (Value set) or a file field (File set).
type MultipartParam struct {
	Key        string
	Value      *Template
	File       *FileValue
	SourceInfo SourceInfo
}

type FileValue struct {
	Filename    Filename
	ContentType string
}

type EntryOption struct {
	Kind        OptionKind
	BoolValue   bool
	IntValue    int
	StringValue string
	SourceInfo  SourceInfo
}

type OptionKind int

const (
	OptionInsecure OptionKind = iota
	OptionLocation
	OptionMaxRedirect
	OptionSkipWhen
)

func (k OptionKind) String() string {
	switch k {
	case OptionInsecure:
		return "insecure"
	case OptionLocation:
		return "location"
	case OptionMaxRedirect:
		return "max-redirect"
	case OptionSkipWhen:
		return "skip-when"
	default:
		return "unknown"
	}
}

type Capture struct {
	Name       string
	Query      *Query
	SourceInfo SourceInfo
}

type Assert struct {
	Query      *Query
	Not        bool
	Predicate  *Predicate
	SourceInfo SourceInfo
}

type Query struct {
	Kind       QueryKind
	Arg        *Template
	SourceInfo SourceInfo
}

type QueryKind int

const (
	QueryStatus QueryKind = iota
	QueryDuration
	QueryBody
	QueryHeader
	QueryCookie
	QueryJSONPath
	QueryJMESPath
	QueryRegex
	QueryVariable
)

func (k QueryKind) String() string {
	switch k {
	case QueryStatus:
		return "status"
	case QueryDuration:
		return "duration"
	case QueryBody:
		return "body"
	case QueryHeader:
		return "header"
	case QueryCookie:
		return "cookie"
	case QueryJSONPath:
		return "jsonpath"
	case QueryJMESPath:
		return "jmespath"
	case QueryRegex:
		return "regex"
	case QueryVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// HasArg reports whether the query kind takes a quoted argument.
func (k QueryKind) HasArg() bool {
	switch k {
	case QueryHeader, QueryCookie, QueryJSONPath, QueryJMESPath, QueryRegex, QueryVariable:
		return true
	}
	return false
}

type Predicate struct {
	Kind       PredicateKind
	Value      *PredicateValue
	SourceInfo SourceInfo
}

type PredicateKind int

const (
	PredicateEquals PredicateKind = iota
	PredicateGreaterThan
	PredicateGreaterOrEqual
	PredicateLessThan
	PredicateLessOrEqual
	PredicateStartsWith
	PredicateEndsWith
	PredicateContains
	PredicateIncludes
	PredicateMatches
	PredicateExists
	PredicateCountEquals
	PredicateIsInteger
	PredicateIsFloat
	PredicateIsBoolean
	PredicateIsString
	PredicateIsCollection
	PredicateMatchesSchema
)

func (k PredicateKind) String() string {
	switch k {
	case PredicateEquals:
		return "equals"
	case PredicateGreaterThan:
		return "greaterThan"
	case PredicateGreaterOrEqual:
		return "greaterThanOrEquals"
	case PredicateLessThan:
		return "lessThan"
	case PredicateLessOrEqual:
		return "lessThanOrEquals"
	case PredicateStartsWith:
		return "startsWith"
	case PredicateEndsWith:
		return "endsWith"
	case PredicateContains:
		return "contains"
	case PredicateIncludes:
		return "includes"
	case PredicateMatches:
		return "matches"
	case PredicateExists:
		return "exists"
	case PredicateCountEquals:
		return "countEquals"
	case PredicateIsInteger:
		return "isInteger"
	case PredicateIsFloat:
		return "isFloat"
	case PredicateIsBoolean:
		return "isBoolean"
	case PredicateIsString:
		return "isString"
	case PredicateIsCollection:
		return "isCollection"
	case PredicateMatchesSchema:
		return "matchesSchema"
	default:
		return "unknown"
	}
}

// HasValue reports whether the predicate kind takes a value.
func (k PredicateKind) HasValue() bool {
	switch k {
	case PredicateExists, PredicateIsInteger, PredicateIsFloat,
		PredicateIsBoolean, PredicateIsString, PredicateIsCollection:
		return false
	}
	return true
}

type PredicateValue struct {
	Kind   PredicateValueKind
	Number float64
	Raw    string
	Bool   bool
	Str    *Template
}

type PredicateValueKind int

const (
	ValueNumber PredicateValueKind = iota
	ValueBool
	ValueNull
	ValueString
)

// Bytes is a body in one of the five source forms. The form-specific
// field named by Kind is set; the others are zero.
type Bytes struct {
	Kind      BytesKind
	Multiline *MultilineString
	JSON      *JSONValue
	XML       string
	Base64    *Base64Data
	File      *FileData
}

type BytesKind int

const (
	BytesMultiline BytesKind = iota
	BytesJSON
	BytesXML
	BytesBase64
	BytesFile
)

type MultilineString struct {
	Lang    string
	Newline Whitespace
	Value   *Template
}

// Base64Data keeps both the decoded bytes and the encoded source text
// exactly as written, interior whitespace included.
type Base64Data struct {
	Space0  Whitespace
	Decoded []byte
	Encoded string
	Space1  Whitespace
}

type FileData struct {
	Space0   Whitespace
	Filename Filename
	Space1   Whitespace
}

type Whitespace struct {
	Value      string
	SourceInfo SourceInfo
}

type Filename struct {
	Value      string
	SourceInfo SourceInfo
}

// Template is text with embedded {{name}} expressions. For quoted
// templates the span excludes the quotes.
type Template struct {
	Quotes     bool
	Elements   []*TemplateElement
	SourceInfo SourceInfo
}

type TemplateElement struct {
	Kind    TemplateElementKind
	Value   string
	Encoded string
	Expr    *Expr
}

type TemplateElementKind int

const (
	ElementString TemplateElementKind = iota
	ElementExpression
)

type Expr struct {
	Space0     Whitespace
	Name       string
	Space1     Whitespace
	SourceInfo SourceInfo
}

// String renders the template as written, with expressions in their
// {{name}} form.
func (t *Template) String() string {
	var sb strings.Builder
	for _, e := range t.Elements {
		switch e.Kind {
		case ElementString:
			sb.WriteString(e.Encoded)
		case ElementExpression:
			sb.WriteString("{{")
			sb.WriteString(e.Expr.Space0.Value)
			sb.WriteString(e.Expr.Name)
			sb.WriteString(e.Expr.Space1.Value)
			sb.WriteString("}}")
		}
	}
	return sb.String()
}

// JSONValue is a parsed JSON body. Whitespace around elements is kept
// verbatim so the source text can be reconstructed exactly.
type JSONValue struct {
	Kind     JSONKind
	Number   string
	Str      *Template
	Bool     bool
	Space0   string
	Elements []*JSONListElement
	Members  []*JSONObjectMember
}

type JSONKind int

const (
	JSONNumber JSONKind = iota
	JSONString
	JSONBoolean
	JSONNull
	JSONList
	JSONObject
)

type JSONListElement struct {
	Space0 string
	Value  *JSONValue
	Space1 string
}

type JSONObjectMember struct {
	Space0      string
	Name        string
	NameEncoded string
	Space1      string
	Space2      string
	Value       *JSONValue
	Space3      string
}
