package agent

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/hupe1980/agentchat/config"
	"github.com/hupe1980/agentchat/internal/util"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/mailbox"
	"github.com/hupe1980/agentchat/model"
)

const (
	// DefaultModel is the model name assumed when a config record omits one.
	DefaultModel = "gpt-4"
	// DefaultMaxConsecutiveAutoReply bounds the auto-replies an actor sends to
	// one counterpart before it stops answering.
	DefaultMaxConsecutiveAutoReply = 100
	// DefaultCapacity is the mailbox capacity of a built actor.
	DefaultCapacity = mailbox.DefaultCapacity
)

// DefaultAssistantDescription describes an assistant built without a description.
const DefaultAssistantDescription = "A helpful and general-purpose AI assistant that has strong language skills, Go skills, and Linux command line skills."

// DefaultAssistantSystemMessage is the system message of an assistant built
// without one. It is rendered as a template with the agent name bound to .name.
const DefaultAssistantSystemMessage = `You are {{.name}}, a helpful AI assistant.
Solve tasks using your coding and language skills.
When you need to collect information or perform a task with code, suggest a complete Go program (in a go coding block) or shell script (in a sh coding block) for the user to execute, one code block per response.
Solve the task step by step if you need to. If a plan is not provided, explain your plan first and be clear which step uses code.
If the result indicates there is an error, fix the error and output the full code again. If the task cannot be solved, revisit your assumptions and try a different approach.
When you find an answer, verify it carefully and include verifiable evidence if possible.
Reply "TERMINATE" in the end when everything is done.`

// Options holds everything an actor is built from. Zero fields are filled
// with the defaults of the actor role at Build time.
type Options struct {
	ConfigList []config.Config
	// MaxConsecutiveAutoReply caps consecutive auto-replies per counterpart.
	// Zero disables auto-replies.
	MaxConsecutiveAutoReply int
	SystemMessage           string
	Description             string
	// ReplySource answers requests no trigger matches.
	ReplySource ReplySource
	// Model backs an assistant's default ModelReply.
	Model              model.Model
	MaxHistoryMessages int
	// ModelLimiter throttles the calls of the default ModelReply.
	ModelLimiter *rate.Limiter
	Capacity           int
	Logger             logging.Logger
	// ErrorHandler receives protocol errors: ReplyCeilingError and ReplyError.
	ErrorHandler    func(err error)
	TerminationFunc func(msg string) bool
	Tracker         mailbox.Tracker
}

// Builder is a copyable template for actors. Setters return a modified copy,
// so a configured builder can be reused to build several agents.
type Builder struct {
	name     string
	role     Role
	opts     Options
	triggers []trigger
	// systemTemplate is rendered at Build while it is still the system message.
	systemTemplate string
}

type trigger struct {
	name string
	src  ReplySource
}

// NewUserProxyBuilder returns a builder for a user proxy actor.
func NewUserProxyBuilder(name string) Builder {
	return newBuilder(name, RoleUserProxy)
}

// NewAssistantBuilder returns a builder for an assistant actor.
func NewAssistantBuilder(name string) Builder {
	b := newBuilder(name, RoleAssistant)
	b.opts.SystemMessage = DefaultAssistantSystemMessage
	b.systemTemplate = DefaultAssistantSystemMessage
	b.opts.Description = DefaultAssistantDescription
	return b
}

func newBuilder(name string, role Role) Builder {
	return Builder{
		name: name,
		role: role,
		opts: Options{
			MaxConsecutiveAutoReply: DefaultMaxConsecutiveAutoReply,
			Capacity:                DefaultCapacity,
		},
	}
}

// Name sets the agent name.
func (b Builder) Name(name string) Builder { b.name = name; return b }

// ConfigList sets the LLM configurations.
func (b Builder) ConfigList(list []config.Config) Builder {
	b.opts.ConfigList = append([]config.Config(nil), list...)
	return b
}

// MaxConsecutiveAutoReply sets the per-counterpart auto-reply ceiling.
func (b Builder) MaxConsecutiveAutoReply(n int) Builder {
	b.opts.MaxConsecutiveAutoReply = n
	return b
}

// SystemMessage sets the system message verbatim.
func (b Builder) SystemMessage(msg string) Builder {
	b.opts.SystemMessage = msg
	b.systemTemplate = ""
	return b
}

// SystemMessageTemplate sets a text/template system message rendered at Build
// with .name and .role bound to the agent name and role.
func (b Builder) SystemMessageTemplate(tmpl string) Builder {
	b.opts.SystemMessage = tmpl
	b.systemTemplate = tmpl
	return b
}

// Description sets the description.
func (b Builder) Description(desc string) Builder { b.opts.Description = desc; return b }

// ReplySource sets the default reply source.
func (b Builder) ReplySource(src ReplySource) Builder { b.opts.ReplySource = src; return b }

// Model attaches a model; an assistant without an explicit ReplySource answers through it.
func (b Builder) Model(m model.Model) Builder { b.opts.Model = m; return b }

// MaxHistoryMessages bounds the history sent to the model.
func (b Builder) MaxHistoryMessages(n int) Builder { b.opts.MaxHistoryMessages = n; return b }

// ModelLimiter throttles model calls.
func (b Builder) ModelLimiter(l *rate.Limiter) Builder { b.opts.ModelLimiter = l; return b }

// Capacity sets the mailbox capacity.
func (b Builder) Capacity(n int) Builder { b.opts.Capacity = n; return b }

// Logger sets the logger.
func (b Builder) Logger(l logging.Logger) Builder { b.opts.Logger = l; return b }

// ErrorHandler sets the protocol error callback.
func (b Builder) ErrorHandler(fn func(err error)) Builder { b.opts.ErrorHandler = fn; return b }

// TerminationFunc overrides IsTermination.
func (b Builder) TerminationFunc(fn func(msg string) bool) Builder {
	b.opts.TerminationFunc = fn
	return b
}

// Tracker sets the mailbox tracker.
func (b Builder) Tracker(t mailbox.Tracker) Builder { b.opts.Tracker = t; return b }

// Reply registers fn for trigger on every actor built from b. A duplicate
// trigger makes Build fail with ErrDuplicateTrigger.
func (b Builder) Reply(name string, fn ReplyFunc) Builder {
	return b.ReplyWith(name, fn)
}

// ReplyWith is Reply for a ReplySource, e.g. a ModelReply dedicated to one
// counterpart.
func (b Builder) ReplyWith(name string, src ReplySource) Builder {
	b.triggers = append(append([]trigger(nil), b.triggers...), trigger{name: name, src: src})
	return b
}

// With applies functional options to a copy of the builder.
func (b Builder) With(optFns ...func(o *Options)) Builder {
	b.opts.ConfigList = append([]config.Config(nil), b.opts.ConfigList...)
	for _, fn := range optFns {
		fn(&b.opts)
	}
	return b
}

// AgentName returns the configured name.
func (b Builder) AgentName() string { return b.name }

// AgentRole returns the configured role.
func (b Builder) AgentRole() Role { return b.role }

// Build allocates a mailbox, mints the identity bound to it and returns the
// actor owning the receiving side. Closing every copy of the identity ends the
// actor's Run loop.
func (b Builder) Build() (*Actor, Identity, error) {
	if b.name == "" {
		return nil, Identity{}, ErrInvalidName
	}

	opts := b.opts
	opts.ConfigList = append([]config.Config(nil), b.opts.ConfigList...)
	if opts.MaxConsecutiveAutoReply < 0 {
		opts.MaxConsecutiveAutoReply = 0
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TerminationFunc == nil {
		opts.TerminationFunc = IsTermination
	}

	logger := logging.With(opts.Logger, "agent", b.name)

	if b.systemTemplate != "" && opts.SystemMessage == b.systemTemplate {
		msg, err := util.RenderTemplate(opts.SystemMessage, map[string]any{
			"name": b.name,
			"role": b.role.String(),
		})
		if err != nil {
			return nil, Identity{}, fmt.Errorf("agent %s: render system message: %w", b.name, err)
		}
		opts.SystemMessage = msg
	}

	if opts.ReplySource == nil {
		opts.ReplySource = DefaultReply{}
		if b.role == RoleAssistant && opts.Model != nil {
			mr := NewModelReply(opts.Model, logger)
			mr.MaxHistoryMessages = opts.MaxHistoryMessages
			mr.Limiter = opts.ModelLimiter
			opts.ReplySource = mr
		}
	}

	tx, rx := mailbox.New[Envelope](func(o *mailbox.Options) {
		o.Capacity = opts.Capacity
		o.Tracker = opts.Tracker
	})
	id := newIdentity(b.name, tx)

	a := &Actor{
		self:        id,
		rx:          rx,
		role:        b.role,
		opts:        opts,
		logger:      logger,
		log:         NewConversationLog(),
		triggers:    NewTriggerRegistry(),
		autoReplies: make(map[string]int),
	}

	for _, t := range b.triggers {
		if err := a.triggers.Register(t.name, t.src); err != nil {
			tx.Close()
			return nil, Identity{}, fmt.Errorf("agent %s: %w", b.name, err)
		}
	}

	return a, id, nil
}
