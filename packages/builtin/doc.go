// Package builtin provides the generator functions usable inside
// template expressions.
//
// Available generators:
//   - newUuid: a random UUID v4
//   - newDate: current UTC time in RFC 3339 format
//   - newTimestamp: current Unix timestamp in seconds
//
// Generators are invoked by name, {{newUuid}}, and produce a fresh
// value on every evaluation. They take precedence over variables with
// the same name.
package builtin
