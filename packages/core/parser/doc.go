// Package parser parses volley test files into a positioned AST.
//
// The grammar is built from rune-level combinators over a backtracking
// Reader. Every failure carries an exact position and a recoverable
// flag: recoverable means the reader was restored and another
// alternative may still match, fatal means a committed branch is
// malformed and the whole parse stops.
//
// Body content is kept close to the source text. JSON bodies preserve
// their whitespace verbatim, base64 bodies keep the encoded text
// exactly as written, and templates record both the decoded and the
// escaped form of each literal run.
package parser
