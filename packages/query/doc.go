// Package query evaluates capture and assert queries against an HTTP
// exchange: status, duration, body, headers, cookies, JSONPath,
// JMESPath, regular expressions and run variables.
package query
