// Package provider builds a model.Model from a config.Config record by
// dispatching on its api_type.
package provider

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentchat/config"
	"github.com/hupe1980/agentchat/model"
	"github.com/hupe1980/agentchat/model/anthropic"
	"github.com/hupe1980/agentchat/model/gemini"
	"github.com/hupe1980/agentchat/model/ollama"
	"github.com/hupe1980/agentchat/model/openai"
)

// ErrUnknownProvider is returned for an api_type without an adapter.
var ErrUnknownProvider = errors.New("unknown model provider")

// New returns the adapter for cfg.
func New(ctx context.Context, cfg config.Config) (model.Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider() {
	case "openai", "open_ai":
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.Model
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		}), nil
	case "azure":
		if cfg.BaseURL == "" || cfg.APIVersion == "" {
			return nil, errors.New("azure requires base_url and api_version")
		}
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.Model
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.APIVersion = cfg.APIVersion
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Model)
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
		}), nil
	case "ollama":
		m, err := ollama.NewModel(func(o *ollama.Options) {
			o.Model = cfg.Model
			o.BaseURL = cfg.BaseURL
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case "google", "gemini":
		m, err := gemini.NewModel(ctx, func(o *gemini.Options) {
			o.Model = cfg.Model
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.APIVersion = cfg.APIVersion
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.APIType)
	}
}

// First builds a model from the first usable record of list, returning the
// joined errors when none works.
func First(ctx context.Context, list []config.Config) (model.Model, error) {
	if len(list) == 0 {
		return nil, errors.New("empty config list")
	}

	var errs []error
	for _, cfg := range list {
		m, err := New(ctx, cfg)
		if err == nil {
			return m, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", cfg.Model, err))
	}

	return nil, errors.Join(errs...)
}
