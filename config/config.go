// Package config loads the LLM configuration list attached to agents at
// construction. The list is opaque to the messaging core; it only selects
// which model backend an assistant talks to.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrConfigLoad is matched (errors.Is) by every LoadError.
var ErrConfigLoad = errors.New("config load failed")

// Config describes one LLM endpoint.
type Config struct {
	Model      string `json:"model"`
	BaseURL    string `json:"base_url"`
	APIKey     string `json:"api_key"`
	APIType    string `json:"api_type,omitempty"`
	APIVersion string `json:"api_version,omitempty"`
}

// Validate checks the mandatory fields of a record.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("model is required")
	}
	return nil
}

// Provider returns the normalized api_type, defaulting to "openai".
func (c Config) Provider() string {
	if c.APIType == "" {
		return "openai"
	}
	return strings.ToLower(c.APIType)
}

// String masks the API key.
func (c Config) String() string {
	key := ""
	if c.APIKey != "" {
		key = "****"
	}
	return fmt.Sprintf("Config{model=%s provider=%s base_url=%s api_key=%s}", c.Model, c.Provider(), c.BaseURL, key)
}

// LoadError reports why a configuration document could not be used.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

// Unwrap exposes the cause.
func (e *LoadError) Unwrap() error { return e.Err }

// Is makes every LoadError match ErrConfigLoad.
func (e *LoadError) Is(target error) bool { return target == ErrConfigLoad }

// LoadFile reads a JSON array of Config records from path.
func LoadFile(path string) ([]Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	list, err := Parse(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}

	return list, nil
}

// Parse decodes a JSON array of Config records.
func Parse(r io.Reader) ([]Config, error) {
	var list []Config
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("decode: %w", err)}
	}

	if len(list) == 0 {
		return nil, &LoadError{Err: errors.New("empty config list")}
	}

	for i, c := range list {
		if err := c.Validate(); err != nil {
			return nil, &LoadError{Err: fmt.Errorf("entry %d: %w", i, err)}
		}
	}

	return list, nil
}
