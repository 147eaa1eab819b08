// Package gemini provides a model.Model backed by the Google Gen AI SDK
// (Gemini API backend).
package gemini

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentchat/model"
	"google.golang.org/genai"
)

// Options configures the Gemini adapter.
type Options struct {
	Model   string
	APIKey  string
	BaseURL string
	// APIVersion overrides the SDK default API version (e.g. "v1beta").
	APIVersion string
}

// Model wraps genai.Client behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a Gemini model. Client construction fails without an API key
// unless one is provided through the environment.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{Model: "gemini-2.0-flash"}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" || opts.APIVersion != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL, APIVersion: opts.APIVersion}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// Generate implements model.Model with a single final response.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		contents, system := convertMessages(req)
		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, &genai.GenerateContentConfig{
			SystemInstruction: system,
		})
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}

		r := model.Response{ID: resp.ResponseID, Text: resp.Text(), FinishReason: "stop"}
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			r.FinishReason = string(resp.Candidates[0].FinishReason)
		}
		if u := resp.UsageMetadata; u != nil {
			r.Usage = &model.TokenUsage{
				PromptTokens:     int(u.PromptTokenCount),
				CompletionTokens: int(u.CandidatesTokenCount),
				TotalTokens:      int(u.TotalTokenCount),
			}
		}
		out <- r
	}()

	return out, errCh
}

// convertMessages maps normalized messages to genai contents. System turns
// and instructions become the system instruction; assistant maps to "model".
func convertMessages(req model.Request) ([]*genai.Content, *genai.Content) {
	var (
		contents    []*genai.Content
		systemParts []*genai.Part
	)

	if req.Instructions != "" {
		systemParts = append(systemParts, &genai.Part{Text: req.Instructions})
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case model.RoleSystem:
			systemParts = append(systemParts, &genai.Part{Text: msg.Content})
		case model.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}

	return contents, system
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}
