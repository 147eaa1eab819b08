package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/agentchat/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ model.Model = (*Model)(nil)

func TestConvertMessages(t *testing.T) {
	msgs := convertMessages(model.Request{
		Instructions: "sys",
		Messages:     []model.Message{{Role: model.RoleUser, Content: "hi"}},
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "hi", msgs[1].Content)
}

func TestNewModel_InvalidURL(t *testing.T) {
	_, err := NewModel(func(o *Options) { o.BaseURL = "://bad" })
	assert.Error(t, err)
}

func TestGenerate_AgainstFakeServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"tiny","message":{"role":"assistant","content":"pong"},"done":true,"done_reason":"stop","prompt_eval_count":3,"eval_count":1}`))
	}))
	defer srv.Close()

	m, err := NewModel(func(o *Options) {
		o.Model = "tiny"
		o.BaseURL = srv.URL
	})
	require.NoError(t, err)

	resp, err := model.Collect(context.Background(), m, model.Request{Messages: []model.Message{{Role: model.RoleUser, Content: "ping"}}})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 4, resp.Usage.TotalTokens)
	assert.Equal(t, model.Info{Name: "tiny", Provider: "ollama"}, m.Info())
}
