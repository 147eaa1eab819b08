package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc := `[
		{"model": "gpt-4", "base_url": "https://api.openai.com/v1", "api_key": "sk-1"},
		{"model": "claude", "base_url": "", "api_key": "k", "api_type": "Anthropic", "api_version": "2023-06-01"}
	]`

	list, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "gpt-4", list[0].Model)
	assert.Equal(t, "openai", list[0].Provider())
	assert.Equal(t, "anthropic", list[1].Provider())
	assert.Equal(t, "2023-06-01", list[1].APIVersion)
	assert.NotContains(t, list[0].String(), "sk-1")
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"malformed":     `[{"model":`,
		"not a list":    `{"model": "gpt-4"}`,
		"empty":         `[]`,
		"missing model": `[{"base_url": "x"}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigLoad)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"model":"gpt-4","base_url":"","api_key":"k"}]`), 0o600))

	list, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`nope`), 0o600))
	_, err = LoadFile(bad)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, bad, le.Path)
}
