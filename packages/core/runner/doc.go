// Package runner executes parsed entries against an HTTP client.
//
// One entry runs through a fixed sequence: template resolution, cookie
// seeding, request execution, capture evaluation, assertion evaluation,
// result assembly. Each step either completes or ends the entry with an
// error carried in the result; the runner itself never panics and never
// returns an error through the call stack. A failed entry does not stop
// the entries after it unless the caller asked for fail-fast.
//
// The variable environment and the client's cookie store are the only
// shared state. Captures write into the environment once every capture
// of an entry has succeeded, so assertions and later entries see the
// new bindings.
package runner
