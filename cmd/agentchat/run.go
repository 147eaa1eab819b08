package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentchat"
	"github.com/hupe1980/agentchat/agent"
	"github.com/hupe1980/agentchat/config"
	"github.com/hupe1980/agentchat/logging"
	"github.com/hupe1980/agentchat/model"
	"github.com/hupe1980/agentchat/model/provider"
)

const (
	userProxyName = "user_proxy"
	assistantName = "assistant"
)

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load the LLM configuration list from `FILE`",
			Value:   "config.json",
			EnvVars: []string{"AGENTCHAT_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "message",
			Aliases: []string{"m"},
			Usage:   "Message the user proxy opens the chat with",
			Value:   "ping",
		},
		&cli.IntFlag{
			Name:  "max-auto-reply",
			Usage: "Consecutive auto-replies per counterpart before an agent stops answering",
			Value: agent.DefaultMaxConsecutiveAutoReply,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Abort the conversation after `DURATION`",
			Value: 2 * time.Minute,
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"AGENTCHAT_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format (text, json, console)",
			Value: "console",
		},
		&cli.Float64Flag{
			Name:  "model-rps",
			Usage: "Maximum model calls per second, 0 for no limit",
		},
		&cli.BoolFlag{
			Name:  "offline",
			Usage: "Answer with the default reply instead of calling a model",
		},
	}
}

func run(c *cli.Context) error {
	logger, err := newLogger(c.App.ErrWriter, c.String("log-level"), c.String("log-format"))
	if err != nil {
		return err
	}

	// A broken configuration is fatal before any agent is spawned.
	configs, err := config.LoadFile(c.String("config"))
	if err != nil {
		return err
	}
	logger.Debug("Configuration loaded", "entries", len(configs), "first", configs[0].String())

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	m, err := newModel(ctx, configs, c.Bool("offline"))
	if err != nil {
		return err
	}

	chat := agentchat.New(ctx, func(o *agentchat.Options) {
		o.Logger = logger
	})

	maxAutoReply := c.Int("max-auto-reply")

	var limiter *rate.Limiter
	if rps := c.Float64("model-rps"); rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	userProxy := agent.NewUserProxyBuilder(userProxyName).
		ConfigList(configs).
		MaxConsecutiveAutoReply(maxAutoReply)

	assistant := agent.NewAssistantBuilder(assistantName).
		ConfigList(configs).
		MaxConsecutiveAutoReply(maxAutoReply).
		Model(m).
		ModelLimiter(limiter).
		ReplyWith(userProxyName, answerOnce(m, limiter, logger))

	for _, b := range []agent.Builder{userProxy, assistant} {
		if _, err := chat.Spawn(b); err != nil {
			_ = chat.Close()
			return err
		}
	}

	tr, chatErr := chat.Chat(ctx, userProxyName, assistantName, c.String("message"))
	closeErr := chat.Close()

	printTranscript(c.App.Writer, tr)

	if chatErr != nil {
		return fmt.Errorf("conversation failed: %w", chatErr)
	}
	if closeErr != nil {
		var replyErr *agent.ReplyError
		if errors.As(closeErr, &replyErr) ||
			errors.Is(closeErr, context.Canceled) || errors.Is(closeErr, context.DeadlineExceeded) {
			return fmt.Errorf("conversation failed: %w", closeErr)
		}
		logger.Warn("Conversation ended with protocol errors", "error", closeErr)
	}

	return nil
}

func newLogger(w io.Writer, level, format string) (logging.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}

	switch format {
	case "console":
		return logging.NewConsoleLogger(w, lvl), nil
	case "json", "text":
		return logging.NewLogger(&logging.LoggerConfig{Level: lvl, Format: format, Output: w}).WithComponent("cli"), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// newModel returns nil when offline, so the assistant falls back to the
// default reply.
func newModel(ctx context.Context, configs []config.Config, offline bool) (model.Model, error) {
	if offline {
		return nil, nil
	}
	return provider.First(ctx, configs)
}

// answerOnce answers the user proxy through the model and makes sure the
// answer ends the conversation, so a single question gets a single answer.
// Model failures surface as agent.ReplyError.
func answerOnce(m model.Model, limiter *rate.Limiter, logger logging.Logger) agent.ReplySource {
	if m == nil {
		return agent.TerminatingReply{Next: agent.DefaultReply{}}
	}
	mr := agent.NewModelReply(m, logger)
	mr.Limiter = limiter
	return agent.TerminatingReply{Next: mr}
}

func printTranscript(w io.Writer, tr agentchat.Transcript) {
	if w == nil {
		w = os.Stdout
	}
	for _, e := range tr.Entries {
		from, to := tr.Initiator, tr.Recipient
		if e.Direction == agent.Inbound {
			from, to = to, from
		}
		fmt.Fprintf(w, "%s (to %s):\n%s\n\n", from, to, e.Content)
	}
}
