package http

import (
	"encoding/json"
	nethttp "net/http"
	"strings"
	"time"
)

// Response is the final response of an exchange. When redirects were
// followed it is the last response, and Duration covers every hop.
type Response struct {
	StatusCode int
	Proto      string
	Headers    []Header
	Body       []byte
	Duration   time.Duration
	URL        string
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) BodyJSON() (any, error) {
	var result any
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Header returns the first header with the given name, ignoring case.
func (r *Response) Header(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// HeaderValues returns every header value for the given name.
func (r *Response) HeaderValues(name string) []string {
	var values []string
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}
	return values
}

// SetCookies parses the Set-Cookie headers of the response.
func (r *Response) SetCookies() []*nethttp.Cookie {
	header := make(nethttp.Header)
	for _, v := range r.HeaderValues("Set-Cookie") {
		header.Add("Set-Cookie", v)
	}
	return (&nethttp.Response{Header: header}).Cookies()
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

func (r *Response) IsRedirect() bool {
	switch r.StatusCode {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
