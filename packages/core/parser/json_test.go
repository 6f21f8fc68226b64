package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONNumberKeepsLiteralText(t *testing.T) {
	for _, text := range []string{"0", "-1", "100", "3.14", "-0.5", "1e3", "1E+2", "2.5e-10"} {
		r := NewReader(text)
		v, err := jsonValue(r)
		require.Nil(t, err, text)
		assert.Equal(t, JSONNumber, v.Kind)
		assert.Equal(t, text, v.Number)
	}
}

func TestJSONNumberErrors(t *testing.T) {
	r := NewReader("1.x")
	_, err := jsonValue(r)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
	assert.Equal(t, "digit", err.Value)
	assert.Equal(t, Position{1, 3}, err.Pos)

	r = NewReader("1ex")
	_, err = jsonValue(r)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
	assert.Equal(t, "digit", err.Value)
}

func TestJSONLiterals(t *testing.T) {
	r := NewReader("null")
	v, err := jsonValue(r)
	require.Nil(t, err)
	assert.Equal(t, JSONNull, v.Kind)

	r = NewReader("true")
	v, err = jsonValue(r)
	require.Nil(t, err)
	assert.Equal(t, JSONBoolean, v.Kind)
	assert.True(t, v.Bool)

	r = NewReader("false")
	v, err = jsonValue(r)
	require.Nil(t, err)
	assert.Equal(t, JSONBoolean, v.Kind)
	assert.False(t, v.Bool)
}

func TestJSONStringTemplate(t *testing.T) {
	r := NewReader(`"Hello {{name}}!"`)
	v, err := jsonValue(r)
	require.Nil(t, err)
	assert.Equal(t, JSONString, v.Kind)
	require.Len(t, v.Str.Elements, 3)
	assert.Equal(t, "Hello ", v.Str.Elements[0].Value)
	assert.Equal(t, "name", v.Str.Elements[1].Expr.Name)
	assert.Equal(t, "!", v.Str.Elements[2].Value)
}

func TestJSONListPreservesWhitespace(t *testing.T) {
	r := NewReader("[ 1, 2 , 3 ]")
	v, err := jsonValue(r)
	require.Nil(t, err)
	assert.Equal(t, JSONList, v.Kind)
	assert.Equal(t, " ", v.Space0)
	require.Len(t, v.Elements, 3)
	assert.Equal(t, "", v.Elements[0].Space0)
	assert.Equal(t, "1", v.Elements[0].Value.Number)
	assert.Equal(t, "", v.Elements[0].Space1)
	assert.Equal(t, " ", v.Elements[1].Space0)
	assert.Equal(t, "2", v.Elements[1].Value.Number)
	assert.Equal(t, " ", v.Elements[1].Space1)
	assert.Equal(t, " ", v.Elements[2].Space0)
	assert.Equal(t, "3", v.Elements[2].Value.Number)
	assert.Equal(t, " ", v.Elements[2].Space1)
}

func TestJSONObjectPreservesWhitespace(t *testing.T) {
	r := NewReader("{\n  \"a\": 1,\n  \"b\" : true\n}")
	v, err := jsonValue(r)
	require.Nil(t, err)
	assert.Equal(t, JSONObject, v.Kind)
	assert.Equal(t, "\n  ", v.Space0)
	require.Len(t, v.Members, 2)

	a := v.Members[0]
	assert.Equal(t, "", a.Space0)
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "", a.Space1)
	assert.Equal(t, " ", a.Space2)
	assert.Equal(t, "1", a.Value.Number)
	assert.Equal(t, "", a.Space3)

	b := v.Members[1]
	assert.Equal(t, "\n  ", b.Space0)
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, " ", b.Space1)
	assert.Equal(t, " ", b.Space2)
	assert.Equal(t, JSONBoolean, b.Value.Kind)
	assert.Equal(t, "\n", b.Space3)
}

func TestJSONNested(t *testing.T) {
	r := NewReader(`{"items":[{"id":1},{"id":2}],"total":2}`)
	v, err := jsonValue(r)
	require.Nil(t, err)
	require.Len(t, v.Members, 2)
	items := v.Members[0].Value
	assert.Equal(t, JSONList, items.Kind)
	require.Len(t, items.Elements, 2)
	assert.Equal(t, JSONObject, items.Elements[0].Value.Kind)
	assert.Equal(t, "2", v.Members[1].Value.Number)
}

func TestJSONEmptyContainers(t *testing.T) {
	r := NewReader("[]")
	v, err := jsonValue(r)
	require.Nil(t, err)
	assert.Equal(t, JSONList, v.Kind)
	assert.Empty(t, v.Elements)

	r = NewReader("{  }")
	v, err = jsonValue(r)
	require.Nil(t, err)
	assert.Equal(t, JSONObject, v.Kind)
	assert.Equal(t, "  ", v.Space0)
	assert.Empty(t, v.Members)
}

func TestJSONKeyEscapes(t *testing.T) {
	r := NewReader(`{"a\"b": 1}`)
	v, err := jsonValue(r)
	require.Nil(t, err)
	require.Len(t, v.Members, 1)
	assert.Equal(t, `a"b`, v.Members[0].Name)
	assert.Equal(t, `a\"b`, v.Members[0].NameEncoded)
}

func TestJSONListMissingClose(t *testing.T) {
	r := NewReader("[1,2")
	_, err := jsonValue(r)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
	assert.Equal(t, "]", err.Value)
	assert.Equal(t, Position{1, 5}, err.Pos)
}

func TestJSONObjectBadValue(t *testing.T) {
	r := NewReader(`{"a": x}`)
	_, err := jsonValue(r)
	require.NotNil(t, err)
	assert.False(t, err.Recoverable)
	assert.Equal(t, Position{1, 7}, err.Pos)
}
