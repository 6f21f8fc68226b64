// Package output renders run results in the formats selected by
// --output: console, json, junit and tap. Console writes as results
// arrive; the machine formats accumulate and write on Flush.
package output
