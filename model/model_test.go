package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Model = (*MockModel)(nil)

func TestMockModel_CannedAndFallback(t *testing.T) {
	m := NewMockModel("mock-1")
	m.AddResponse("ping", "pong")

	resp, err := Collect(context.Background(), m, Request{Messages: []Message{{Role: RoleUser, Content: "ping"}}})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)

	resp, err = Collect(context.Background(), m, Request{
		Stream: true,
		Messages: []Message{
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hello", resp.Text)
	assert.Len(t, m.Requests(), 2)
	assert.Equal(t, "mock", m.Info().Provider)
}

func TestMockModel_NoMessages(t *testing.T) {
	_, err := Collect(context.Background(), NewMockModel("m"), Request{})
	assert.Error(t, err)
}

type scriptedModel struct {
	responses []Response
	err       error
}

func (s scriptedModel) Generate(context.Context, Request) (<-chan Response, <-chan error) {
	out := make(chan Response, len(s.responses))
	errCh := make(chan error, 1)
	for _, r := range s.responses {
		out <- r
	}
	if s.err != nil {
		errCh <- s.err
	}
	close(out)
	close(errCh)
	return out, errCh
}

func (s scriptedModel) Info() Info { return Info{Name: "scripted"} }

func TestCollect(t *testing.T) {
	ctx := context.Background()

	resp, err := Collect(ctx, scriptedModel{responses: []Response{{Partial: true, Text: "ab"}, {Partial: true, Text: "c"}}}, Request{})
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Text)

	resp, err = Collect(ctx, scriptedModel{responses: []Response{{Partial: true, Text: "x"}, {Text: "", FinishReason: "stop"}}}, Request{})
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Text)

	_, err = Collect(ctx, scriptedModel{}, Request{})
	assert.ErrorIs(t, err, ErrNoResponse)

	boom := errors.New("boom")
	_, err = Collect(ctx, scriptedModel{err: boom}, Request{})
	assert.ErrorIs(t, err, boom)
}
