package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/agentchat/model"
	"github.com/stretchr/testify/assert"
)

var _ model.Model = (*Model)(nil)

func TestBuildMessages_MergesConsecutiveRoles(t *testing.T) {
	msgs := buildMessages([]model.Message{
		{Role: model.RoleSystem, Content: "ignored here"},
		{Role: model.RoleUser, Content: "a"},
		{Role: model.RoleUser, Content: "b"},
		{Role: model.RoleAssistant, Content: "c"},
		{Role: model.RoleUser, Content: ""},
		{Role: model.RoleUser, Content: "d"},
	})

	if assert.Len(t, msgs, 3) {
		assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
		assert.Len(t, msgs[0].Content, 2)
		assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
		assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	}
}

func TestSystemBlocks(t *testing.T) {
	blocks := systemBlocks(model.Request{
		Instructions: "be brief",
		Messages:     []model.Message{{Role: model.RoleSystem, Content: "extra"}},
	})
	assert.Len(t, blocks, 2)
	assert.Equal(t, "be brief", blocks[0].Text)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.Model = "claude-test"
	})
	assert.Equal(t, model.Info{Name: "claude-test", Provider: "anthropic"}, m.Info())
}
