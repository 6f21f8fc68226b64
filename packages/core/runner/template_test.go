package runner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volleyhq/volley/packages/core/parser"
)

func exprTemplate(parts ...*parser.TemplateElement) *parser.Template {
	return &parser.Template{Elements: parts}
}

func lit(s string) *parser.TemplateElement {
	return &parser.TemplateElement{Kind: parser.ElementString, Value: s, Encoded: s}
}

func ref(name string) *parser.TemplateElement {
	return &parser.TemplateElement{Kind: parser.ElementExpression, Expr: &parser.Expr{Name: name}}
}

func TestResolveTemplate(t *testing.T) {
	rs := newResolver(map[string]any{"host": "api.example.org", "port": float64(8080)})

	out, err := rs.template(exprTemplate(lit("http://"), ref("host"), lit(":"), ref("port")))
	require.Nil(t, err)
	assert.Equal(t, "http://api.example.org:8080", out)
}

func TestResolveTemplateValueKinds(t *testing.T) {
	rs := newResolver(map[string]any{
		"s":     "text",
		"n":     float64(200),
		"pi":    3.5,
		"b":     true,
		"none":  nil,
		"count": int64(12),
	})

	tests := []struct {
		name string
		want string
	}{
		{"s", "text"},
		{"n", "200"},
		{"pi", "3.5"},
		{"b", "true"},
		{"none", "null"},
		{"count", "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := rs.template(exprTemplate(ref(tt.name)))
			require.Nil(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestResolveUndefinedVariable(t *testing.T) {
	rs := newResolver(map[string]any{})

	tpl := exprTemplate(ref("ghost"))
	tpl.Elements[0].Expr.SourceInfo = parser.SourceInfo{Start: parser.Position{Line: 3, Column: 7}}

	_, err := rs.template(tpl)
	require.NotNil(t, err)
	assert.Equal(t, ErrorTemplateVariable, err.Kind)
	assert.Contains(t, err.Message, `variable "ghost" is not defined`)
	assert.Equal(t, parser.Position{Line: 3, Column: 7}, err.Pos)
}

func TestResolveUnrenderableVariable(t *testing.T) {
	rs := newResolver(map[string]any{"items": []any{1, 2}})

	_, err := rs.template(exprTemplate(ref("items")))
	require.NotNil(t, err)
	assert.Equal(t, ErrorTemplateVariable, err.Kind)
	assert.Contains(t, err.Message, "cannot be rendered as text")
}

func TestResolveGenerator(t *testing.T) {
	rs := newResolver(map[string]any{})

	out, err := rs.template(exprTemplate(ref("newUuid")))
	require.Nil(t, err)
	_, perr := uuid.Parse(out)
	assert.NoError(t, perr)

	again, _ := rs.template(exprTemplate(ref("newUuid")))
	assert.NotEqual(t, out, again)
}

func TestGeneratorWinsOverVariable(t *testing.T) {
	rs := newResolver(map[string]any{"newUuid": "fixed"})

	out, err := rs.template(exprTemplate(ref("newUuid")))
	require.Nil(t, err)
	assert.NotEqual(t, "fixed", out)
	_, perr := uuid.Parse(out)
	assert.NoError(t, perr)
}

func TestTemplateEncodedKeepsEscapes(t *testing.T) {
	rs := newResolver(map[string]any{"name": "Bob"})

	tpl := exprTemplate(
		&parser.TemplateElement{Kind: parser.ElementString, Value: `say "hi" `, Encoded: `say \"hi\" `},
		ref("name"),
	)

	plain, err := rs.template(tpl)
	require.Nil(t, err)
	assert.Equal(t, `say "hi" Bob`, plain)

	encoded, err := rs.templateEncoded(tpl)
	require.Nil(t, err)
	assert.Equal(t, `say \"hi\" Bob`, encoded)
}

func TestResolveNilTemplate(t *testing.T) {
	rs := newResolver(map[string]any{})

	out, err := rs.template(nil)
	require.Nil(t, err)
	assert.Equal(t, "", out)
}
