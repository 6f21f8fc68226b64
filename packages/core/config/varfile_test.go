package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"null", "null", nil},
		{"true", "true", true},
		{"false", "false", false},
		{"integer", "42", int64(42)},
		{"negative integer", "-7", int64(-7)},
		{"float", "3.14", 3.14},
		{"string", "hello world", "hello world"},
		{"double quoted keeps text", `"true"`, "true"},
		{"single quoted keeps text", "'42'", "42"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseValue(tt.input))
		})
	}
}

func TestParseVariable(t *testing.T) {
	name, value, err := ParseVariable("host=api.example.org")
	require.NoError(t, err)
	assert.Equal(t, "host", name)
	assert.Equal(t, "api.example.org", value)

	name, value, err = ParseVariable("retries=3")
	require.NoError(t, err)
	assert.Equal(t, "retries", name)
	assert.Equal(t, int64(3), value)

	_, _, err = ParseVariable("no-equals-sign")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected name=value")

	_, _, err = ParseVariable("=value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestLoadVariablesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vars.env")
	content := `# connection settings
host=api.example.org
port=8080

# feature toggles
beta=true
label="v2 rollout"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	vars, err := LoadVariablesFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"host":  "api.example.org",
		"port":  int64(8080),
		"beta":  true,
		"label": "v2 rollout",
	}, vars)
}

func TestLoadVariablesFileBadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vars.env")
	require.NoError(t, os.WriteFile(path, []byte("ok=1\nbroken line\n"), 0644))

	_, err := LoadVariablesFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2:")
}

func TestLoadVariablesFileNotFound(t *testing.T) {
	_, err := LoadVariablesFile(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open variables file")
}
