package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	neturl "net/url"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default timeout for a whole exchange,
	// redirects included.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow.
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host.
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool.
	DefaultIdleConnTimeout = 90 * time.Second
)

// ErrTooManyRedirects is returned when an exchange exceeds its redirect
// limit. Callers test for it with errors.Is.
var ErrTooManyRedirects = errors.New("too many redirects")

// Client executes resolved requests. Redirects are followed by the
// client itself, never by net/http, so each hop passes through the
// cookie store and the redirect limit.
type Client struct {
	secure         *nethttp.Client
	insecure       *nethttp.Client
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	skipVerify     bool
	proxyURL       string
	defaultHeaders []Header
	cookies        *CookieStore
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: false,
		maxRedirects:   DefaultMaxRedirects,
		cookies:        NewCookieStore(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.secure = &nethttp.Client{
		Transport:     c.newTransport(false),
		CheckRedirect: noFollow,
	}
	c.insecure = &nethttp.Client{
		Transport:     c.newTransport(true),
		CheckRedirect: noFollow,
	}
	return c
}

func noFollow(req *nethttp.Request, via []*nethttp.Request) error {
	return nethttp.ErrUseLastResponse
}

func (c *Client) newTransport(skipVerify bool) *nethttp.Transport {
	transport := &nethttp.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}
	if skipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if c.proxyURL != "" {
		if proxyURL, err := neturl.Parse(c.proxyURL); err == nil {
			transport.Proxy = nethttp.ProxyURL(proxyURL)
		}
	}
	return transport
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) { c.followRedirect = follow }
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) { c.maxRedirects = max }
}

func WithInsecure(insecure bool) ClientOption {
	return func(c *Client) { c.skipVerify = insecure }
}

func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) { c.proxyURL = proxyURL }
}

func WithDefaultHeader(name, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders = append(c.defaultHeaders, Header{Name: name, Value: value})
	}
}

// AddCookie seeds the cookie store for the given URL before a request
// is sent.
func (c *Client) AddCookie(u *neturl.URL, name, value string) {
	c.cookies.Add(Cookie{
		Domain: u.Hostname(),
		Path:   "/",
		Name:   name,
		Value:  value,
	})
}

// Cookies exposes the cookie store.
func (c *Client) Cookies() *CookieStore {
	return c.cookies
}

// Do executes the request and returns the final response. Duration on
// the response covers every redirect hop.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := ValidateURL(req.URL); err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := c.execute(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	resp.Duration = time.Since(start)
	return resp, nil
}

func (c *Client) execute(ctx context.Context, req *Request, depth int) (*Response, error) {
	httpReq, err := c.buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.clientFor(req).Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Proto:      httpResp.Proto,
		Body:       body,
		URL:        httpReq.URL.String(),
	}
	for name, values := range httpResp.Header {
		for _, v := range values {
			resp.Headers = append(resp.Headers, Header{Name: name, Value: v})
		}
	}
	c.cookies.Update(httpReq.URL, resp.SetCookies())

	if !resp.IsRedirect() || !c.follow(req) {
		return resp, nil
	}
	location := resp.Header("Location")
	if location == "" {
		return resp, nil
	}
	if depth >= c.redirectLimit(req) {
		return nil, fmt.Errorf("%w (limit %d)", ErrTooManyRedirects, c.redirectLimit(req))
	}
	next, err := httpReq.URL.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect location %q: %v", location, err)
	}
	return c.execute(ctx, redirectedRequest(req, resp.StatusCode, next.String()), depth+1)
}

// redirectedRequest builds the follow-up request for a redirect. A 303,
// or a 301/302 answering a POST, turns into a body-less GET; 307 and 308
// keep the method and body.
func redirectedRequest(req *Request, status int, nextURL string) *Request {
	next := &Request{
		Method:          req.Method,
		URL:             nextURL,
		Body:            req.Body,
		FormParams:      req.FormParams,
		Multipart:       req.Multipart,
		FollowRedirects: req.FollowRedirects,
		MaxRedirects:    req.MaxRedirects,
		Insecure:        req.Insecure,
	}
	dropBody := status == 303 || ((status == 301 || status == 302) && req.Method == "POST")
	if dropBody {
		next.Method = "GET"
		next.Body = nil
		next.FormParams = nil
		next.Multipart = nil
	}
	for _, h := range req.Headers {
		if dropBody && isContentHeader(h.Name) {
			continue
		}
		next.Headers = append(next.Headers, h)
	}
	return next
}

func isContentHeader(name string) bool {
	switch textproto.CanonicalMIMEHeaderKey(name) {
	case "Content-Type", "Content-Length", "Content-Encoding":
		return true
	}
	return false
}

func (c *Client) buildHTTPRequest(ctx context.Context, req *Request) (*nethttp.Request, error) {
	var body io.Reader
	var contentType string

	switch {
	case len(req.Multipart) > 0:
		buf, ct, err := BuildMultipartBody(req.Multipart)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = ct
	case len(req.FormParams) > 0:
		body = strings.NewReader(req.EncodeFormParams())
		contentType = "application/x-www-form-urlencoded"
	case len(req.Body) > 0:
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, req.Method, req.BuildURL(), body)
	if err != nil {
		return nil, err
	}

	for _, h := range c.defaultHeaders {
		httpReq.Header.Set(h.Name, h.Value)
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}
	if contentType != "" && !req.HasHeader("Content-Type") {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range c.cookies.Match(httpReq.URL) {
		httpReq.AddCookie(&nethttp.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	return httpReq, nil
}

func (c *Client) clientFor(req *Request) *nethttp.Client {
	skip := c.skipVerify
	if req.Insecure != nil {
		skip = *req.Insecure
	}
	if skip {
		return c.insecure
	}
	return c.secure
}

func (c *Client) follow(req *Request) bool {
	if req.FollowRedirects != nil {
		return *req.FollowRedirects
	}
	return c.followRedirect
}

func (c *Client) redirectLimit(req *Request) int {
	if req.MaxRedirects != nil {
		return *req.MaxRedirects
	}
	return c.maxRedirects
}

// Get is a convenience wrapper used mostly in tests.
func (c *Client) Get(url string, headers map[string]string) (*Response, error) {
	req := NewRequest("GET", url)
	for k, v := range headers {
		req.AddHeader(k, v)
	}
	return c.Do(context.Background(), req)
}

// Post is a convenience wrapper used mostly in tests.
func (c *Client) Post(url string, body []byte, headers map[string]string) (*Response, error) {
	req := NewRequest("POST", url)
	req.SetBody(body)
	for k, v := range headers {
		req.AddHeader(k, v)
	}
	return c.Do(context.Background(), req)
}

// BuildMultipartBody renders the fields as a multipart/form-data body
// and returns it with its content type.
func BuildMultipartBody(fields []MultipartField) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, field := range fields {
		if !field.IsFile {
			if err := writer.WriteField(field.Name, field.Value); err != nil {
				return nil, "", err
			}
			continue
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
			field.Name, filepath.Base(field.Filename)))
		contentType := field.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(field.Content); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
