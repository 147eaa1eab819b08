package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_Kinds(t *testing.T) {
	tests := []struct {
		env  Envelope
		kind Kind
		name string
	}{
		{InitiateChat{}, KindInitiateChat, "initiate_chat"},
		{Send{}, KindSend, "send"},
		{Receive{}, KindReceive, "receive"},
		{Reset{}, KindReset, "reset"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.env.Kind())
		assert.Equal(t, tt.name, tt.env.Kind().String())
	}
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestIdentity_Zero(t *testing.T) {
	var id Identity
	assert.True(t, id.IsZero())
	assert.False(t, id.Reachable())
	assert.Equal(t, "<none>", id.String())
	assert.ErrorIs(t, id.Post(context.Background(), Reset{}), ErrInvalidIdentity)

	id.Close()
	assert.True(t, id.Clone().IsZero())
}

func TestIdentity_PostAndRelease(t *testing.T) {
	a, id, err := NewUserProxyBuilder("solo").Capacity(1).Build()
	require.NoError(t, err)

	assert.Equal(t, "solo", id.String())
	assert.ErrorIs(t, id.Post(context.Background(), nil), ErrInvalidEnvelope)
	require.NoError(t, id.Post(context.Background(), Reset{}))
	assert.Equal(t, 1, a.rx.Len())

	copied := id
	copied.Close()
	assert.ErrorIs(t, id.Post(context.Background(), Reset{}), ErrIdentityClosed, "copies share one handle")
	assert.False(t, id.Reachable())
}

func TestConversationLog(t *testing.T) {
	l := NewConversationLog()
	l.Append("b", "hi", Outbound)
	l.Append("b", "hello", Inbound)
	l.Append("a", "x", Inbound)

	assert.Equal(t, []string{"hi", "hello"}, l.Messages("b"))
	assert.Equal(t, []string{}, l.Messages("missing"))
	assert.Equal(t, []string{"a", "b"}, l.Counterparts())
	assert.Equal(t, 3, l.Len())

	entries := l.Entries("b")
	entries[0].Content = "changed"
	assert.Equal(t, "hi", l.Entries("b")[0].Content, "entries are copied")
	assert.Equal(t, "outbound", l.Entries("b")[0].Direction.String())
	assert.Equal(t, "inbound", l.Entries("b")[1].Direction.String())

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Counterparts())

	var zero ConversationLog
	zero.Append("c", "ok", Inbound)
	assert.Equal(t, []string{"ok"}, zero.Messages("c"))
}
