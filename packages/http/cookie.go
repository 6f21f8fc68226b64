package http

import (
	"fmt"
	"io"
	nethttp "net/http"
	neturl "net/url"
	"strings"
	"sync"
	"time"
)

// Cookie is one entry of the cookie store, in the shape of the Netscape
// cookie file format. A zero Expires means a session cookie.
type Cookie struct {
	Domain            string
	IncludeSubdomains bool
	Path              string
	Secure            bool
	Expires           time.Time
	Name              string
	Value             string
}

// Expired reports whether the cookie has an expiry in the past.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

// NetscapeLine renders the cookie as one line of a Netscape cookie file.
func (c Cookie) NetscapeLine() string {
	flag := "FALSE"
	if c.IncludeSubdomains {
		flag = "TRUE"
	}
	secure := "FALSE"
	if c.Secure {
		secure = "TRUE"
	}
	var expiry int64
	if !c.Expires.IsZero() {
		expiry = c.Expires.Unix()
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%s\t%s",
		c.Domain, flag, c.Path, secure, expiry, c.Name, c.Value)
}

// CookieStore keeps cookies across the entries of a run. It is safe for
// concurrent use.
type CookieStore struct {
	mu      sync.Mutex
	cookies []Cookie
}

func NewCookieStore() *CookieStore {
	return &CookieStore{}
}

// Add inserts a cookie, replacing any existing one with the same domain,
// path and name. An empty path defaults to "/".
func (s *CookieStore) Add(c Cookie) {
	if c.Path == "" {
		c.Path = "/"
	}
	c.Domain = strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.cookies {
		if existing.Domain == c.Domain && existing.Path == c.Path && existing.Name == c.Name {
			s.cookies[i] = c
			return
		}
	}
	s.cookies = append(s.cookies, c)
}

// Update records the Set-Cookie headers of a response against the
// request URL. A cookie without a Domain attribute stays host-only.
func (s *CookieStore) Update(u *neturl.URL, setCookies []*nethttp.Cookie) {
	now := time.Now()
	for _, sc := range setCookies {
		c := Cookie{
			Domain: strings.ToLower(u.Hostname()),
			Path:   sc.Path,
			Secure: sc.Secure,
			Name:   sc.Name,
			Value:  sc.Value,
		}
		if sc.Domain != "" {
			c.Domain = strings.TrimPrefix(strings.ToLower(sc.Domain), ".")
			c.IncludeSubdomains = true
		}
		switch {
		case sc.MaxAge > 0:
			c.Expires = now.Add(time.Duration(sc.MaxAge) * time.Second)
		case sc.MaxAge < 0:
			s.remove(c.Domain, c.Path, c.Name)
			continue
		case !sc.Expires.IsZero():
			c.Expires = sc.Expires
		}
		if c.Expired(now) {
			s.remove(c.Domain, c.Path, c.Name)
			continue
		}
		s.Add(c)
	}
}

func (s *CookieStore) remove(domain, path, name string) {
	if path == "" {
		path = "/"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cookies[:0]
	for _, c := range s.cookies {
		if c.Domain == domain && c.Path == path && c.Name == name {
			continue
		}
		kept = append(kept, c)
	}
	s.cookies = kept
}

// Match returns the cookies to send for the given URL.
func (s *CookieStore) Match(u *neturl.URL) []Cookie {
	host := strings.ToLower(u.Hostname())
	path := u.Path
	if path == "" {
		path = "/"
	}
	https := u.Scheme == "https"
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Cookie
	for _, c := range s.cookies {
		if c.Expired(now) {
			continue
		}
		if c.Secure && !https {
			continue
		}
		if !domainMatch(host, c.Domain, c.IncludeSubdomains) {
			continue
		}
		if !pathMatch(path, c.Path) {
			continue
		}
		matched = append(matched, c)
	}
	return matched
}

// All returns a copy of every stored cookie.
func (s *CookieStore) All() []Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Cookie, len(s.cookies))
	copy(out, s.cookies)
	return out
}

// Clear drops every stored cookie.
func (s *CookieStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = nil
}

// WriteNetscape writes the store in the Netscape cookie file format.
func (s *CookieStore) WriteNetscape(w io.Writer) error {
	if _, err := io.WriteString(w, "# Netscape HTTP Cookie File\n"); err != nil {
		return err
	}
	for _, c := range s.All() {
		if _, err := io.WriteString(w, c.NetscapeLine()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func domainMatch(host, domain string, includeSubdomains bool) bool {
	if host == domain {
		return true
	}
	return includeSubdomains && strings.HasSuffix(host, "."+domain)
}

func pathMatch(requestPath, cookiePath string) bool {
	if cookiePath == "/" || requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}
