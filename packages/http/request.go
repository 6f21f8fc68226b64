package http

import (
	"fmt"
	neturl "net/url"
	"strings"
)

// Header is a single request or response header. Headers are kept as an
// ordered list because names may repeat.
type Header struct {
	Name  string
	Value string
}

// Param is one query-string or form parameter.
type Param struct {
	Key   string
	Value string
}

// MultipartField is one part of a multipart/form-data body. File parts
// carry their content already read; the client never touches the disk.
type MultipartField struct {
	Name        string
	Value       string
	IsFile      bool
	Filename    string
	ContentType string
	Content     []byte
}

// Request is a fully resolved HTTP request: every template has already
// been rendered and file contents read. The redirect fields override the
// client defaults when non-nil.
type Request struct {
	Method      string
	URL         string
	Headers     []Header
	QueryParams []Param
	FormParams  []Param
	Multipart   []MultipartField
	Body        []byte

	FollowRedirects *bool
	MaxRedirects    *int
	Insecure        *bool
}

func NewRequest(method, requestURL string) *Request {
	return &Request{Method: method, URL: requestURL}
}

func (r *Request) AddHeader(name, value string) *Request {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
	return r
}

func (r *Request) AddQueryParam(key, value string) *Request {
	r.QueryParams = append(r.QueryParams, Param{Key: key, Value: value})
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

// HasHeader reports whether a header with the given name is set,
// ignoring case.
func (r *Request) HasHeader(name string) bool {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// BuildURL returns the request URL with the query parameters appended in
// order, keeping any query string already present.
func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}
	var sb strings.Builder
	sb.WriteString(r.URL)
	sep := "?"
	if strings.Contains(r.URL, "?") {
		sep = "&"
	}
	for _, p := range r.QueryParams {
		sb.WriteString(sep)
		sb.WriteString(neturl.QueryEscape(p.Key))
		sb.WriteString("=")
		sb.WriteString(neturl.QueryEscape(p.Value))
		sep = "&"
	}
	return sb.String()
}

// EncodeFormParams renders the form parameters as an
// application/x-www-form-urlencoded body, in order.
func (r *Request) EncodeFormParams() string {
	var sb strings.Builder
	for i, p := range r.FormParams {
		if i > 0 {
			sb.WriteString("&")
		}
		sb.WriteString(neturl.QueryEscape(p.Key))
		sb.WriteString("=")
		sb.WriteString(neturl.QueryEscape(p.Value))
	}
	return sb.String()
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme.
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
