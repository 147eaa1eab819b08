package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentchat/config"
	"github.com/hupe1980/agentchat/model"
)

func TestBuilder_InvalidName(t *testing.T) {
	_, id, err := NewUserProxyBuilder("").Build()
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.True(t, id.IsZero())
}

func TestBuilder_UserProxyDefaults(t *testing.T) {
	a, id, err := NewUserProxyBuilder("user_proxy").Build()
	require.NoError(t, err)
	defer id.Close()

	assert.Equal(t, "user_proxy", a.Name())
	assert.Equal(t, RoleUserProxy, a.Role())
	assert.Equal(t, DefaultMaxConsecutiveAutoReply, a.MaxConsecutiveAutoReply())
	assert.Empty(t, a.SystemMessage())
	assert.Empty(t, a.Description())
	assert.IsType(t, DefaultReply{}, a.opts.ReplySource)
	assert.Equal(t, DefaultCapacity, id.outbound.Cap())
	assert.NotEmpty(t, id.ID())
	assert.True(t, id.Equal(a.Identity()))
}

func TestBuilder_AssistantDefaults(t *testing.T) {
	a, id, err := NewAssistantBuilder("assistant").Build()
	require.NoError(t, err)
	defer id.Close()

	assert.Equal(t, RoleAssistant, a.Role())
	assert.Contains(t, a.SystemMessage(), "You are assistant,")
	assert.Contains(t, a.SystemMessage(), `Reply "TERMINATE" in the end`)
	assert.Equal(t, DefaultAssistantDescription, a.Description())
	assert.IsType(t, DefaultReply{}, a.opts.ReplySource, "no model attached")
}

func TestBuilder_AssistantWithModel(t *testing.T) {
	m := model.NewMockModel(DefaultModel)
	lim := rate.NewLimiter(rate.Limit(5), 1)
	a, id, err := NewAssistantBuilder("assistant").Model(m).MaxHistoryMessages(4).ModelLimiter(lim).Build()
	require.NoError(t, err)
	defer id.Close()

	mr, ok := a.opts.ReplySource.(*ModelReply)
	require.True(t, ok)
	assert.Same(t, m, mr.Model)
	assert.Equal(t, 4, mr.MaxHistoryMessages)
	assert.Same(t, lim, mr.Limiter)

	// A user proxy ignores the model unless asked to use it.
	up, upID, err := NewUserProxyBuilder("user_proxy").Model(m).Build()
	require.NoError(t, err)
	defer upID.Close()
	assert.IsType(t, DefaultReply{}, up.opts.ReplySource)
}

func TestBuilder_Setters(t *testing.T) {
	cfgs := []config.Config{{Model: "gpt-4o", APIKey: "k"}}
	var handled error

	b := NewAssistantBuilder("assistant").
		ConfigList(cfgs).
		MaxConsecutiveAutoReply(-5).
		SystemMessageTemplate("You are {{.name | upper}} ({{.role}})").
		Description("helper").
		ReplySource(StaticReply("ok")).
		Capacity(3).
		ErrorHandler(func(err error) { handled = err })

	cfgs[0].Model = "mutated"

	a, id, err := b.Build()
	require.NoError(t, err)
	defer id.Close()

	assert.Equal(t, "gpt-4o", a.ConfigList()[0].Model)
	assert.Equal(t, 0, a.MaxConsecutiveAutoReply())
	assert.Equal(t, "You are ASSISTANT (assistant)", a.SystemMessage())
	assert.Equal(t, "helper", a.Description())
	assert.Equal(t, StaticReply("ok"), a.opts.ReplySource)
	assert.Equal(t, 3, id.outbound.Cap())

	a.opts.ErrorHandler(ErrReplyCeilingExceeded)
	assert.ErrorIs(t, handled, ErrReplyCeilingExceeded)
}

func TestBuilder_TemplateError(t *testing.T) {
	_, _, err := NewAssistantBuilder("assistant").SystemMessageTemplate("{{.name").Build()
	assert.Error(t, err)
}

func TestBuilder_SystemMessageIsLiteral(t *testing.T) {
	const msg = "Use {{ and }} literally, {{.name}} too"

	a, id, err := NewAssistantBuilder("assistant").SystemMessage(msg).Build()
	require.NoError(t, err)
	defer id.Close()
	assert.Equal(t, msg, a.SystemMessage())

	a2, id2, err := NewAssistantBuilder("assistant").
		With(func(o *Options) { o.SystemMessage = msg }).
		Build()
	require.NoError(t, err)
	defer id2.Close()
	assert.Equal(t, msg, a2.SystemMessage())
}

func TestBuilder_IsCopyableTemplate(t *testing.T) {
	base := NewUserProxyBuilder("first").MaxConsecutiveAutoReply(7)
	other := base.Name("second").With(func(o *Options) { o.Description = "copy" })

	assert.Equal(t, "first", base.AgentName())
	assert.Equal(t, "second", other.AgentName())
	assert.Equal(t, RoleUserProxy, other.AgentRole())

	a1, id1, err := base.Build()
	require.NoError(t, err)
	defer id1.Close()
	a2, id2, err := base.Build()
	require.NoError(t, err)
	defer id2.Close()

	assert.Equal(t, 7, a1.MaxConsecutiveAutoReply())
	assert.Empty(t, a1.Description())
	assert.NotEqual(t, id1.ID(), id2.ID(), "each build mints its own identity")
	assert.NotSame(t, a1, a2)
}

func TestBuilder_TriggerRegistrationOnBuiltActor(t *testing.T) {
	a, id, err := NewAssistantBuilder("assistant").Build()
	require.NoError(t, err)
	defer id.Close()

	fn := func(context.Context, *State) (string, bool) { return "", false }
	require.NoError(t, a.RegisterReply("user_proxy", fn))
	assert.ErrorIs(t, a.RegisterReply("user_proxy", fn), ErrDuplicateTrigger)
	assert.Equal(t, []string{"user_proxy"}, a.Triggers().Triggers())
}

func TestBuilder_Reply(t *testing.T) {
	fn := ReplyFunc(func(context.Context, *State) (string, bool) { return "hi", true })

	base := NewAssistantBuilder("assistant").Reply("user_proxy", fn)
	a, id, err := base.Build()
	require.NoError(t, err)
	defer id.Close()
	assert.Equal(t, []string{"user_proxy"}, a.Triggers().Triggers())

	_, _, err = base.Reply("user_proxy", fn).Build()
	assert.ErrorIs(t, err, ErrDuplicateTrigger)

	_, _, err = base.Reply("", fn).Build()
	assert.ErrorIs(t, err, ErrInvalidTrigger)

	// The template itself is unchanged by derived builders.
	a2, id2, err := base.Build()
	require.NoError(t, err)
	defer id2.Close()
	assert.Equal(t, 1, a2.Triggers().Len())
}
