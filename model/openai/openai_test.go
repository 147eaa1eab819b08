package openai

import (
	"testing"

	"github.com/hupe1980/agentchat/model"
	"github.com/stretchr/testify/assert"
)

var _ model.Model = (*Model)(nil)

func TestNewModel_Options(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = "gpt-4"
		o.APIKey = "sk-test"
		o.BaseURL = "http://localhost:1234/v1"
	})

	assert.Equal(t, "gpt-4", m.opts.Model)
	assert.Equal(t, model.Info{Name: "gpt-4", Provider: "openai"}, m.Info())
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages(model.Request{
		Instructions: "be brief",
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "ping"},
			{Role: model.RoleAssistant, Content: "pong"},
			{Role: "other", Content: "?"},
		},
	})

	assert.Len(t, msgs, 4)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
	assert.NotNil(t, msgs[3].OfUser)
}
