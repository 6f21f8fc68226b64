package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	r := NewReader("hello")
	require.Nil(t, literal(r, "hello"))
	assert.Equal(t, 5, r.Cursor())

	r = NewReader("hxllo")
	err := literal(r, "hello")
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
	assert.Equal(t, Position{1, 1}, err.Pos)
	assert.Equal(t, "hello", err.Value)

	// The error is positioned at the start of the attempt, not at the
	// mismatching rune.
	r = NewReader("  hxllo")
	zeroOrMoreSpaces(r)
	err = literal(r, "hello")
	require.NotNil(t, err)
	assert.Equal(t, Position{1, 3}, err.Pos)
}

func TestTryLiteral(t *testing.T) {
	r := NewReader("hxllo")
	err := tryLiteral(r, "hello")
	require.NotNil(t, err)
	assert.True(t, err.Recoverable)
	// Reader restored after the failed attempt.
	assert.Equal(t, 0, r.Cursor())
	assert.Equal(t, Position{1, 1}, r.Pos())

	require.Nil(t, tryLiteral(r, "hx"))
	assert.Equal(t, 2, r.Cursor())
}

func TestChoiceBacktracksOnRecoverable(t *testing.T) {
	a := func(r *Reader) (string, *Error) {
		if err := tryLiteral(r, "aaa"); err != nil {
			return "", err
		}
		return "a", nil
	}
	b := func(r *Reader) (string, *Error) {
		if err := tryLiteral(r, "bbb"); err != nil {
			return "", err
		}
		return "b", nil
	}

	r := NewReader("bbb")
	v, err := choice(r, a, b)
	require.Nil(t, err)
	assert.Equal(t, "b", v)
	assert.Equal(t, 3, r.Cursor())
}

func TestChoicePropagatesFatal(t *testing.T) {
	fatal := func(r *Reader) (string, *Error) {
		return "", newError(r.Pos(), false, KindExpecting, "x")
	}
	neverRuns := func(r *Reader) (string, *Error) {
		t.Fatal("alternative after a fatal error must not run")
		return "", nil
	}

	r := NewReader("input")
	_, err := choice(r, fatal, neverRuns)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
}

func TestChoiceReturnsLastError(t *testing.T) {
	first := func(r *Reader) (string, *Error) {
		return "", newError(r.Pos(), true, KindExpecting, "first")
	}
	second := func(r *Reader) (string, *Error) {
		return "", newError(r.Pos(), true, KindExpecting, "second")
	}

	r := NewReader("zzz")
	_, err := choice(r, first, second)
	require.NotNil(t, err)
	assert.Equal(t, "second", err.Value)
	assert.True(t, err.Recoverable)
}

func TestOptional(t *testing.T) {
	p := func(r *Reader) (string, *Error) {
		if err := tryLiteral(r, "yes"); err != nil {
			return "", err
		}
		return "yes", nil
	}

	r := NewReader("no")
	v, err := optional(r, p)
	require.Nil(t, err)
	assert.Equal(t, "", v)
	assert.Equal(t, 0, r.Cursor())

	r = NewReader("yes")
	v, err = optional(r, p)
	require.Nil(t, err)
	assert.Equal(t, "yes", v)

	fatal := func(r *Reader) (string, *Error) {
		return "", newError(r.Pos(), false, KindExpecting, "x")
	}
	r = NewReader("no")
	_, err = optional(r, fatal)
	require.NotNil(t, err)
}

func TestZeroOrMore(t *testing.T) {
	item := func(r *Reader) (string, *Error) {
		if err := tryLiteral(r, "ab"); err != nil {
			return "", err
		}
		return "ab", nil
	}

	r := NewReader("ababax")
	items, err := zeroOrMore(r, item)
	require.Nil(t, err)
	assert.Equal(t, []string{"ab", "ab"}, items)
	// Restored to just after the last success.
	assert.Equal(t, 4, r.Cursor())

	r = NewReader("xx")
	items, err = zeroOrMore(r, item)
	require.Nil(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, r.Cursor())
}

func TestZeroOrMorePropagatesFatal(t *testing.T) {
	calls := 0
	p := func(r *Reader) (string, *Error) {
		calls++
		if calls == 1 {
			r.Read()
			return "one", nil
		}
		return "", newError(r.Pos(), false, KindExpecting, "boom")
	}

	r := NewReader("abc")
	_, err := zeroOrMore(r, p)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
}

func TestNonrecover(t *testing.T) {
	p := func(r *Reader) (string, *Error) {
		return "", newError(r.Pos(), true, KindExpecting, "x")
	}
	r := NewReader("zzz")
	_, err := nonrecover(r, p)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
	assert.Equal(t, "x", err.Value)
}

func TestZeroOrMoreSpaces(t *testing.T) {
	r := NewReader("  \tx")
	ws := zeroOrMoreSpaces(r)
	assert.Equal(t, "  \t", ws.Value)
	assert.Equal(t, SourceInfo{Start: Position{1, 1}, End: Position{1, 4}}, ws.SourceInfo)

	// Always succeeds, even on nothing.
	ws = zeroOrMoreSpaces(r)
	assert.Equal(t, "", ws.Value)
	assert.Equal(t, SourceInfo{Start: Position{1, 4}, End: Position{1, 4}}, ws.SourceInfo)
}

func TestNewline(t *testing.T) {
	r := NewReader("\r\nx")
	ws, err := newline(r)
	require.Nil(t, err)
	assert.Equal(t, "\r\n", ws.Value)
	assert.Equal(t, Position{2, 1}, r.Pos())

	r = NewReader("x")
	_, err = newline(r)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
}

func TestLineTerminator(t *testing.T) {
	r := NewReader("   # trailing comment\nnext")
	require.Nil(t, lineTerminator(r))
	assert.Equal(t, Position{2, 1}, r.Pos())

	r = NewReader("  ")
	require.Nil(t, lineTerminator(r))
	assert.True(t, r.EOF())

	r = NewReader(" junk\n")
	err := lineTerminator(r)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
}
