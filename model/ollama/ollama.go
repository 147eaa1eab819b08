// Package ollama provides a model.Model backed by a local or remote Ollama
// server through its official Go API client.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hupe1980/agentchat/model"
	"github.com/ollama/ollama/api"
)

// Options configures the Ollama adapter.
type Options struct {
	Model string
	// BaseURL of the Ollama server. Empty uses OLLAMA_HOST / the default.
	BaseURL    string
	HTTPClient *http.Client
	// Options are passed through as Ollama model options (temperature, ...).
	Options map[string]any
}

// Model wraps the Ollama chat endpoint behind the generic model.Model interface.
type Model struct {
	client *api.Client
	opts   Options
}

// NewModel creates an Ollama model. It fails only when BaseURL is not a valid URL
// or the environment based client cannot be constructed.
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{Model: "llama3.2", HTTPClient: http.DefaultClient}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.BaseURL == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
		return &Model{client: client, opts: opts}, nil
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &Model{client: api.NewClient(u, opts.HTTPClient), opts: opts}, nil
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		stream := req.Stream
		chatReq := &api.ChatRequest{
			Model:    m.opts.Model,
			Messages: convertMessages(req),
			Stream:   &stream,
			Options:  m.opts.Options,
		}

		var text strings.Builder
		err := m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				text.WriteString(resp.Message.Content)
				if stream && !resp.Done {
					out <- model.Response{Partial: true, Text: resp.Message.Content}
				}
			}
			if resp.Done {
				finish := resp.DoneReason
				if finish == "" {
					finish = "stop"
				}
				out <- model.Response{
					Text:         text.String(),
					FinishReason: finish,
					Usage: &model.TokenUsage{
						PromptTokens:     resp.PromptEvalCount,
						CompletionTokens: resp.EvalCount,
						TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
					},
				}
			}
			return nil
		})
		if err != nil {
			errCh <- fmt.Errorf("ollama chat error: %w", err)
		}
	}()

	return out, errCh
}

func convertMessages(req model.Request) []api.Message {
	msgs := make([]api.Message, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		msgs = append(msgs, api.Message{Role: model.RoleSystem, Content: req.Instructions})
	}
	for _, msg := range req.Messages {
		msgs = append(msgs, api.Message{Role: msg.Role, Content: msg.Content})
	}
	return msgs
}

// Info returns metadata describing this Ollama model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "ollama"}
}
