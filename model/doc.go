// Package model defines the provider‑agnostic abstractions used by reply
// sources that call out to a language model.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Ollama, Gemini) implement the Model interface
// from this package so agents remain decoupled from vendor SDKs. The
// provider subpackage picks an implementation from a config.Config record.
package model
