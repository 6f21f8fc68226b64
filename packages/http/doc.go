// Package http executes resolved volley requests.
//
// It wraps the standard library's http package with the behavior the
// runner needs:
//   - redirects followed by the client itself, with a per-request limit
//   - a cookie store shared across the entries of a run
//   - ordered, repeatable headers and parameters
//   - multipart form data built from pre-read file contents
package http
