package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderPositions(t *testing.T) {
	r := NewReader("ab\ncd")
	assert.Equal(t, Position{1, 1}, r.Pos())

	c, ok := r.Read()
	require.True(t, ok)
	assert.Equal(t, 'a', c)
	assert.Equal(t, Position{1, 2}, r.Pos())

	r.Read()
	c, _ = r.Read()
	assert.Equal(t, '\n', c)
	assert.Equal(t, Position{2, 1}, r.Pos())

	c, _ = r.Read()
	assert.Equal(t, 'c', c)
	assert.Equal(t, Position{2, 2}, r.Pos())
	assert.Equal(t, 4, r.Cursor())
	assert.False(t, r.EOF())

	r.Read()
	assert.True(t, r.EOF())
	_, ok = r.Read()
	assert.False(t, ok)
}

func TestReaderSaveRestore(t *testing.T) {
	r := NewReader("hello\nworld")
	r.ReadN(7)
	saved := r.State()
	assert.Equal(t, Position{2, 2}, saved.Pos)

	r.ReadWhile(func(c rune) bool { return true })
	assert.True(t, r.EOF())

	r.Restore(saved)
	assert.Equal(t, saved, r.State())
	assert.Equal(t, "orld", r.ReadWhile(func(c rune) bool { return true }))
}

func TestReaderPeek(t *testing.T) {
	r := NewReader("xyz")
	c, ok := r.Peek()
	require.True(t, ok)
	assert.Equal(t, 'x', c)
	assert.Equal(t, 0, r.Cursor())

	assert.Equal(t, "xy", r.PeekN(2))
	assert.Equal(t, "xyz", r.PeekN(5))
	assert.Equal(t, 0, r.Cursor())
}

func TestReaderUnicode(t *testing.T) {
	r := NewReader("héllo")
	r.Read()
	c, _ := r.Read()
	assert.Equal(t, 'é', c)
	// One rune, one cursor step, one column.
	assert.Equal(t, 2, r.Cursor())
	assert.Equal(t, Position{1, 3}, r.Pos())
}
