package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, text string) *Entry {
	t.Helper()
	f, err := ParseString(text)
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)
	return f.Entries[0]
}

func TestParseMinimalRequest(t *testing.T) {
	e := parseOne(t, "GET https://example.org\n")
	assert.Equal(t, "GET", e.Request.Method)
	assert.Equal(t, "https://example.org", e.Request.URL.String())
	assert.Empty(t, e.Request.Headers)
	assert.Nil(t, e.Request.Body)
	assert.Nil(t, e.Response)
	assert.Equal(t, Position{1, 1}, e.Request.SourceInfo.Start)
	assert.Equal(t, Position{1, 24}, e.Request.SourceInfo.End)
}

func TestParseCustomMethod(t *testing.T) {
	e := parseOne(t, "FROBNICATE https://example.org\n")
	assert.Equal(t, "FROBNICATE", e.Request.Method)
}

func TestParseRequestHeaders(t *testing.T) {
	e := parseOne(t, `GET https://example.org/search
User-Agent: volley/1.0
Accept: application/json
`)
	require.Len(t, e.Request.Headers, 2)
	assert.Equal(t, "User-Agent", e.Request.Headers[0].Key)
	assert.Equal(t, "volley/1.0", e.Request.Headers[0].Value.String())
	assert.Equal(t, "Accept", e.Request.Headers[1].Key)
	assert.Equal(t, "application/json", e.Request.Headers[1].Value.String())
}

func TestParseHeaderTemplate(t *testing.T) {
	e := parseOne(t, "GET https://example.org\nAuthorization: Bearer {{token}}\n")
	require.Len(t, e.Request.Headers, 1)
	v := e.Request.Headers[0].Value
	require.Len(t, v.Elements, 2)
	assert.Equal(t, "Bearer ", v.Elements[0].Value)
	assert.Equal(t, ElementExpression, v.Elements[1].Kind)
	assert.Equal(t, "token", v.Elements[1].Expr.Name)
}

func TestParseEmptyHeaderValue(t *testing.T) {
	e := parseOne(t, "GET https://example.org\nX-Empty:\n")
	require.Len(t, e.Request.Headers, 1)
	assert.Equal(t, "", e.Request.Headers[0].Value.String())
}

func TestParseURLTemplate(t *testing.T) {
	e := parseOne(t, "GET {{base}}/users/{{id}}\n")
	u := e.Request.URL
	require.Len(t, u.Elements, 3)
	assert.Equal(t, "base", u.Elements[0].Expr.Name)
	assert.Equal(t, "/users/", u.Elements[1].Value)
	assert.Equal(t, "id", u.Elements[2].Expr.Name)
}

func TestParseQueryStringParams(t *testing.T) {
	e := parseOne(t, `GET https://example.org/search
[QueryStringParams]
q: hello world
page: 2
`)
	require.Len(t, e.Request.QueryParams, 2)
	assert.Equal(t, "q", e.Request.QueryParams[0].Key)
	assert.Equal(t, "hello world", e.Request.QueryParams[0].Value.String())
	assert.Equal(t, "page", e.Request.QueryParams[1].Key)
	assert.Equal(t, "2", e.Request.QueryParams[1].Value.String())
}

func TestParseFormAndCookies(t *testing.T) {
	e := parseOne(t, `POST https://example.org/login
[FormParams]
user: bob
password: secret{{suffix}}
[Cookies]
session: abc123
`)
	require.Len(t, e.Request.FormParams, 2)
	assert.Equal(t, "user", e.Request.FormParams[0].Key)
	require.Len(t, e.Request.FormParams[1].Value.Elements, 2)
	require.Len(t, e.Request.Cookies, 1)
	assert.Equal(t, "session", e.Request.Cookies[0].Key)
	assert.Equal(t, "abc123", e.Request.Cookies[0].Value.String())
}

func TestParseMultipart(t *testing.T) {
	e := parseOne(t, `POST https://example.org/upload
[MultipartFormData]
field1: value1
upload1: file,data.bin; application/octet-stream
`)
	require.Len(t, e.Request.Multipart, 2)
	p0 := e.Request.Multipart[0]
	assert.Equal(t, "field1", p0.Key)
	assert.Nil(t, p0.File)
	assert.Equal(t, "value1", p0.Value.String())
	p1 := e.Request.Multipart[1]
	assert.Equal(t, "upload1", p1.Key)
	require.NotNil(t, p1.File)
	assert.Equal(t, "data.bin", p1.File.Filename.Value)
	assert.Equal(t, "application/octet-stream", p1.File.ContentType)
}

func TestParseOptions(t *testing.T) {
	e := parseOne(t, `GET https://example.org
[Options]
insecure: true
location: false
max-redirect: 5
skip-when: env == "prod" # not in production
`)
	opts := e.Request.Options
	require.Len(t, opts, 4)
	assert.Equal(t, OptionInsecure, opts[0].Kind)
	assert.True(t, opts[0].BoolValue)
	assert.Equal(t, OptionLocation, opts[1].Kind)
	assert.False(t, opts[1].BoolValue)
	assert.Equal(t, OptionMaxRedirect, opts[2].Kind)
	assert.Equal(t, 5, opts[2].IntValue)
	assert.Equal(t, OptionSkipWhen, opts[3].Kind)
	assert.Equal(t, `env == "prod"`, opts[3].StringValue)
}

func TestParseRequestFileBody(t *testing.T) {
	e := parseOne(t, "POST https://example.org/upload\nfile,payload.bin;\n")
	require.NotNil(t, e.Request.Body)
	assert.Equal(t, BytesFile, e.Request.Body.Kind)
	assert.Equal(t, "payload.bin", e.Request.Body.File.Filename.Value)
}

func TestParseRequestJSONBody(t *testing.T) {
	e := parseOne(t, `POST https://example.org/api/users
Content-Type: application/json
{
  "name": "Bob"
}
`)
	require.NotNil(t, e.Request.Body)
	require.Equal(t, BytesJSON, e.Request.Body.Kind)
	v := e.Request.Body.JSON
	require.Len(t, v.Members, 1)
	assert.Equal(t, "name", v.Members[0].Name)
}

func TestParseRequestMultilineBody(t *testing.T) {
	e := parseOne(t, "POST https://example.org/data\n```text\nline1\nline2\n```\n")
	require.NotNil(t, e.Request.Body)
	require.Equal(t, BytesMultiline, e.Request.Body.Kind)
	m := e.Request.Body.Multiline
	assert.Equal(t, "text", m.Lang)
	assert.Equal(t, "line1\nline2\n", m.Value.String())
}

func TestParseRequestBase64Body(t *testing.T) {
	e := parseOne(t, "POST https://example.org\nbase64,SGVsbG8=;\n")
	require.NotNil(t, e.Request.Body)
	require.Equal(t, BytesBase64, e.Request.Body.Kind)
	assert.Equal(t, []byte("Hello"), e.Request.Body.Base64.Decoded)
	assert.Equal(t, "SGVsbG8=", e.Request.Body.Base64.Encoded)
}

func TestParseResponseXMLBody(t *testing.T) {
	e := parseOne(t, "GET https://example.org\nHTTP 200\n<html></html>\n")
	require.NotNil(t, e.Response)
	require.NotNil(t, e.Response.Body)
	assert.Equal(t, BytesXML, e.Response.Body.Kind)
	assert.Equal(t, "<html></html>", e.Response.Body.XML)
}

func TestParseVersions(t *testing.T) {
	cases := []struct {
		line string
		want VersionValue
	}{
		{"HTTP/1.0", Version10},
		{"HTTP/1.1", Version11},
		{"HTTP/2", Version2},
		{"HTTP", VersionAny},
	}
	for _, c := range cases {
		t.Run(c.line, func(t *testing.T) {
			e := parseOne(t, "GET https://example.org\n"+c.line+" 200\n")
			require.NotNil(t, e.Response)
			assert.Equal(t, c.want, e.Response.Version.Value)
			assert.Equal(t, 200, e.Response.Status.Value)
		})
	}
}

func TestParseStatusAny(t *testing.T) {
	e := parseOne(t, "GET https://example.org\nHTTP *\n")
	require.NotNil(t, e.Response)
	assert.True(t, e.Response.Status.Any)
}

func TestParseResponseHeaders(t *testing.T) {
	e := parseOne(t, `GET https://example.org
HTTP 200
Content-Type: text/html; charset=utf-8
`)
	require.NotNil(t, e.Response)
	require.Len(t, e.Response.Headers, 1)
	assert.Equal(t, "Content-Type", e.Response.Headers[0].Key)
	assert.Equal(t, "text/html; charset=utf-8", e.Response.Headers[0].Value.String())
}

func TestParseCaptures(t *testing.T) {
	e := parseOne(t, `POST https://example.org/api/login
HTTP 200
[Captures]
token: jsonpath "$.token"
csrf: header "X-CSRF"
whole: body
`)
	caps := e.Response.Captures
	require.Len(t, caps, 3)
	assert.Equal(t, "token", caps[0].Name)
	assert.Equal(t, QueryJSONPath, caps[0].Query.Kind)
	assert.Equal(t, "$.token", caps[0].Query.Arg.String())
	assert.Equal(t, "csrf", caps[1].Name)
	assert.Equal(t, QueryHeader, caps[1].Query.Kind)
	assert.Equal(t, "whole", caps[2].Name)
	assert.Equal(t, QueryBody, caps[2].Query.Kind)
	assert.Nil(t, caps[2].Query.Arg)
}

func TestParseAsserts(t *testing.T) {
	e := parseOne(t, `GET https://example.org/api/users
HTTP/1.1 200
[Asserts]
status equals 200
jsonpath "$.name" equals "Bob"
header "Location" startsWith "/users/"
jsonpath "$.admin" not equals true
duration lessThan 1000
jsonpath "$.id" exists
jsonpath "$.items" countEquals 3
jsonpath "$.score" greaterThanOrEquals 2.5
body matches "^\\{"
variable "token" isString
`)
	asserts := e.Response.Asserts
	require.Len(t, asserts, 10)

	a := asserts[0]
	assert.Equal(t, QueryStatus, a.Query.Kind)
	assert.False(t, a.Not)
	assert.Equal(t, PredicateEquals, a.Predicate.Kind)
	assert.Equal(t, ValueNumber, a.Predicate.Value.Kind)
	assert.Equal(t, float64(200), a.Predicate.Value.Number)
	assert.Equal(t, "200", a.Predicate.Value.Raw)

	a = asserts[1]
	assert.Equal(t, QueryJSONPath, a.Query.Kind)
	assert.Equal(t, "$.name", a.Query.Arg.String())
	assert.Equal(t, ValueString, a.Predicate.Value.Kind)
	assert.Equal(t, "Bob", a.Predicate.Value.Str.String())

	a = asserts[2]
	assert.Equal(t, QueryHeader, a.Query.Kind)
	assert.Equal(t, PredicateStartsWith, a.Predicate.Kind)

	a = asserts[3]
	assert.True(t, a.Not)
	assert.Equal(t, PredicateEquals, a.Predicate.Kind)
	assert.Equal(t, ValueBool, a.Predicate.Value.Kind)
	assert.True(t, a.Predicate.Value.Bool)

	a = asserts[4]
	assert.Equal(t, QueryDuration, a.Query.Kind)
	assert.Equal(t, PredicateLessThan, a.Predicate.Kind)

	a = asserts[5]
	assert.Equal(t, PredicateExists, a.Predicate.Kind)
	assert.Nil(t, a.Predicate.Value)

	a = asserts[6]
	assert.Equal(t, PredicateCountEquals, a.Predicate.Kind)
	assert.Equal(t, float64(3), a.Predicate.Value.Number)

	a = asserts[7]
	assert.Equal(t, PredicateGreaterOrEqual, a.Predicate.Kind)
	assert.Equal(t, 2.5, a.Predicate.Value.Number)

	a = asserts[8]
	assert.Equal(t, QueryBody, a.Query.Kind)
	assert.Equal(t, PredicateMatches, a.Predicate.Kind)
	require.Len(t, a.Predicate.Value.Str.Elements, 1)
	assert.Equal(t, `^\{`, a.Predicate.Value.Str.Elements[0].Value)

	a = asserts[9]
	assert.Equal(t, QueryVariable, a.Query.Kind)
	assert.Equal(t, PredicateIsString, a.Predicate.Kind)
}

func TestParsePredicateKeywordOverlap(t *testing.T) {
	e := parseOne(t, `GET https://example.org
HTTP 200
[Asserts]
jsonpath "$.a" matchesSchema "schema.json"
jsonpath "$.b" lessThanOrEquals 10
jsonpath "$.c" isCollection
`)
	asserts := e.Response.Asserts
	require.Len(t, asserts, 3)
	assert.Equal(t, PredicateMatchesSchema, asserts[0].Predicate.Kind)
	assert.Equal(t, PredicateLessOrEqual, asserts[1].Predicate.Kind)
	assert.Equal(t, PredicateIsCollection, asserts[2].Predicate.Kind)
}

func TestParseCapturesThenAsserts(t *testing.T) {
	e := parseOne(t, `GET https://example.org
HTTP 200
[Captures]
id: jsonpath "$.id"
[Asserts]
status equals 200
`)
	require.Len(t, e.Response.Captures, 1)
	require.Len(t, e.Response.Asserts, 1)
}

func TestParseMultipleEntries(t *testing.T) {
	f, err := ParseString(`GET https://example.org/a
HTTP 200

POST https://example.org/b
HTTP 201
`)
	require.NoError(t, err)
	require.Len(t, f.Entries, 2)
	assert.Equal(t, "GET", f.Entries[0].Request.Method)
	assert.Equal(t, 200, f.Entries[0].Response.Status.Value)
	assert.Equal(t, "POST", f.Entries[1].Request.Method)
	assert.Equal(t, 201, f.Entries[1].Response.Status.Value)
}

func TestParseComments(t *testing.T) {
	f, err := ParseString(`# fetch the user list
GET https://example.org/users # inline
# status must be ok
HTTP 200
`)
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)
	e := f.Entries[0]
	assert.Equal(t, "https://example.org/users", e.Request.URL.String())
	require.NotNil(t, e.Response)
	assert.Equal(t, 200, e.Response.Status.Value)
}

func TestParseCommentOnlyFile(t *testing.T) {
	f, err := ParseString("# nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, f.Entries)
}

func TestParseEmptyFile(t *testing.T) {
	f, err := ParseString("")
	require.NoError(t, err)
	assert.Empty(t, f.Entries)
}

func TestParseCRLF(t *testing.T) {
	f, err := ParseString("GET https://example.org\r\nHTTP 200\r\n")
	require.NoError(t, err)
	require.Len(t, f.Entries, 1)
	assert.Equal(t, 200, f.Entries[0].Response.Status.Value)
}

func TestParseResponseSourceInfo(t *testing.T) {
	e := parseOne(t, "GET https://example.org\nHTTP 200\n")
	require.NotNil(t, e.Response)
	assert.Equal(t, Position{2, 1}, e.Response.SourceInfo.Start)
	assert.Equal(t, Position{2, 9}, e.Response.SourceInfo.End)
}

func parseErr(t *testing.T, text string) *Error {
	t.Helper()
	_, err := ParseString(text)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.False(t, perr.Recoverable)
	return perr
}

func TestParseErrors(t *testing.T) {
	t.Run("unknown section", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\n[Foo]\n")
		assert.Equal(t, KindSection, e.Kind)
		assert.Equal(t, "Foo", e.Value)
		assert.Equal(t, Position{2, 1}, e.Pos)
		assert.Equal(t, "2:1: unknown section [Foo]", e.Error())
	})

	t.Run("missing url", func(t *testing.T) {
		e := parseErr(t, "GET \n")
		assert.Equal(t, KindURL, e.Kind)
		assert.Equal(t, Position{1, 5}, e.Pos)
	})

	t.Run("bad version", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\nHTTP/3 200\n")
		assert.Equal(t, KindVersion, e.Kind)
		assert.Equal(t, Position{2, 1}, e.Pos)
	})

	t.Run("missing status", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\nHTTP abc\n")
		assert.Equal(t, KindStatus, e.Kind)
		assert.Equal(t, Position{2, 6}, e.Pos)
	})

	t.Run("unknown predicate", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\nHTTP 200\n[Asserts]\nstatus equalz 200\n")
		assert.Equal(t, KindPredicate, e.Kind)
		assert.Equal(t, Position{4, 8}, e.Pos)
	})

	t.Run("unknown query in capture", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\nHTTP 200\n[Captures]\nx: foo\n")
		assert.Equal(t, KindQuery, e.Kind)
		assert.Equal(t, Position{4, 4}, e.Pos)
	})

	t.Run("capture query missing argument", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\nHTTP 200\n[Captures]\nid: jsonpath\n")
		assert.Equal(t, KindExpecting, e.Kind)
		assert.Equal(t, "space", e.Value)
	})

	t.Run("assert bad value", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\nHTTP 200\n[Asserts]\nstatus equals abc\n")
		assert.Equal(t, KindPredicateValue, e.Kind)
		assert.Equal(t, Position{4, 15}, e.Pos)
	})

	t.Run("bad option value", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\n[Options]\ninsecure: yes\n")
		assert.Equal(t, KindExpecting, e.Kind)
		assert.Equal(t, "true|false", e.Value)
		assert.Equal(t, Position{3, 11}, e.Pos)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		e := parseErr(t, "GET https://example.org\nHTTP 200\nxxx zzz\n")
		assert.Equal(t, KindMethod, e.Kind)
		assert.Equal(t, Position{3, 1}, e.Pos)
	})

	t.Run("unknown option ends section", func(t *testing.T) {
		// An unrecognized option is not consumed, so the leftover line
		// surfaces as a method error.
		e := parseErr(t, "GET https://example.org\n[Options]\nbogus: true\n")
		assert.Equal(t, KindMethod, e.Kind)
		assert.Equal(t, Position{3, 1}, e.Pos)
	})
}
