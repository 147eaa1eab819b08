// Package logging provides a minimal logging interface and adapters for agentchat.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that actors, groups and model adapters use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ChatLogger with component/agent scoping and envelope/reply helpers
//   - ZerologAdapter for human readable console output
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	b := agent.NewAssistantBuilder("assistant").Logger(logger.WithComponent("actor"))
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
