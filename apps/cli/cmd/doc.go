// Package cmd implements the volley CLI commands using Cobra.
//
// Available commands:
//   - run: Execute entries from volley files
//   - validate: Check file syntax without executing
//   - version: Show volley version information
package cmd
