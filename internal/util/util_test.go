package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36) // UUID length
	assert.NotEqual(t, a, b)
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)

	out, err = RenderTemplate("You are {{.name}} talking to {{default \"someone\" .peer}}.", map[string]any{"name": "assistant"})
	require.NoError(t, err)
	assert.Equal(t, "You are assistant talking to someone.", out)

	out, err = RenderTemplate("{{upper .name}}", map[string]any{"name": "bob"})
	require.NoError(t, err)
	assert.Equal(t, "BOB", out)

	_, err = RenderTemplate("{{.name", nil)
	assert.Error(t, err)
}
