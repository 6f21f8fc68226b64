package parser

import "strings"

// Position is a 1-based line and column in the input.
type Position struct {
	Line   int
	Column int
}

// SourceInfo is the input span a node was parsed from. End is the
// position just past the last rune of the span.
type SourceInfo struct {
	Start Position
	End   Position
}

// ReaderState is the complete cursor state of a Reader. Backtracking
// saves and restores it wholesale; nothing ever adjusts the cursor or
// the position by arithmetic.
type ReaderState struct {
	Cursor int
	Pos    Position
}

// Reader walks the input rune by rune, tracking line and column.
type Reader struct {
	buffer []rune
	state  ReaderState
}

func NewReader(input string) *Reader {
	return &Reader{
		buffer: []rune(input),
		state:  ReaderState{Pos: Position{Line: 1, Column: 1}},
	}
}

func (r *Reader) State() ReaderState    { return r.state }
func (r *Reader) Restore(s ReaderState) { r.state = s }
func (r *Reader) Pos() Position         { return r.state.Pos }
func (r *Reader) Cursor() int           { return r.state.Cursor }

func (r *Reader) EOF() bool {
	return r.state.Cursor >= len(r.buffer)
}

func (r *Reader) Peek() (rune, bool) {
	if r.EOF() {
		return 0, false
	}
	return r.buffer[r.state.Cursor], true
}

// PeekN returns the next n runes without consuming them. Shorter at
// end of input.
func (r *Reader) PeekN(n int) string {
	end := r.state.Cursor + n
	if end > len(r.buffer) {
		end = len(r.buffer)
	}
	return string(r.buffer[r.state.Cursor:end])
}

func (r *Reader) Read() (rune, bool) {
	if r.EOF() {
		return 0, false
	}
	c := r.buffer[r.state.Cursor]
	r.state.Cursor++
	if c == '\n' {
		r.state.Pos.Line++
		r.state.Pos.Column = 1
	} else {
		r.state.Pos.Column++
	}
	return c, true
}

func (r *Reader) ReadN(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		c, ok := r.Read()
		if !ok {
			break
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func (r *Reader) ReadWhile(pred func(rune) bool) string {
	var sb strings.Builder
	for {
		c, ok := r.Peek()
		if !ok || !pred(c) {
			break
		}
		r.Read()
		sb.WriteRune(c)
	}
	return sb.String()
}
