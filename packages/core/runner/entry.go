package runner

import (
	"context"
	neturl "net/url"

	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/http"
	"github.com/volleyhq/volley/packages/log"
)

// Run executes one entry against the client and the shared variable
// environment. entryIndex is 1-based and only used for reporting. The
// returned result always exists; errors ride inside it.
func Run(ctx context.Context, entry *parser.Entry, client *http.Client, entryIndex int, vars map[string]any, contextDir string, logger log.Logger) *EntryResult {
	result := &EntryResult{Index: entryIndex}
	rs := newResolver(vars)

	req, cookies, rerr := rs.request(entry.Request, contextDir)
	if rerr != nil {
		result.Errors = append(result.Errors, rerr)
		return result
	}
	result.Request = req

	logger.Verbose("------------------------------------------------------------------------------")
	logger.Verbose("executing entry %d", entryIndex)

	seedCookies(client, req.URL, cookies)

	logger.Verbose("")
	logger.Verbose("Cookie store:")
	for _, c := range client.Cookies().All() {
		logger.Verbose("%s", c.NetscapeLine())
	}
	logger.Verbose("")
	logRequest(logger, req)

	resp, err := client.Do(ctx, req)
	if err != nil {
		result.Errors = append(result.Errors, connectionError(entry.Request.URL.SourceInfo.Start, req.URL, err))
		return result
	}
	result.Response = resp
	result.Elapsed = resp.Duration
	logger.Verbose("Response Time: %dms", resp.DurationMs())

	if entry.Response == nil {
		logger.Verbose("")
		return result
	}

	captures, cerr := rs.captures(entry.Response.Captures, resp)
	if cerr != nil {
		result.Errors = append(result.Errors, cerr)
		return result
	}
	result.Captures = captures
	for _, c := range captures {
		vars[c.Name] = c.Value
	}
	if len(captures) > 0 {
		logger.Verbose("Captures")
		for _, c := range captures {
			logger.Verbose("%s: %s", c.Name, formatValue(c.Value))
		}
	}

	asserts := rs.asserts(entry.Response, resp, contextDir)
	result.Asserts = asserts
	for _, a := range asserts {
		if !a.Success {
			result.Errors = append(result.Errors, &Error{Kind: ErrorAssert, Pos: a.Pos, Message: a.failureMessage()})
		}
	}

	logger.Verbose("")
	return result
}

// seedCookies injects the entry's cookie literals into the client's
// store before the exchange, so an entry can set and use a cookie in a
// single round trip. A URL that does not parse to a host is skipped
// silently here; the execute step reports the bad URL itself.
func seedCookies(client *http.Client, rawURL string, cookies []http.Param) {
	if len(cookies) == 0 {
		return
	}
	u, err := neturl.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return
	}
	for _, c := range cookies {
		client.AddCookie(u, c.Key, c.Value)
	}
}

func logRequest(logger log.Logger, req *http.Request) {
	logger.Verbose("Request")
	logger.Verbose("%s %s", req.Method, req.BuildURL())
	for _, h := range req.Headers {
		logger.Verbose("%s: %s", h.Name, h.Value)
	}
	logger.Verbose("")
}
