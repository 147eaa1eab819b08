package util

import "github.com/google/uuid"

// NewID returns a random UUID string used for agent and conversation IDs.
func NewID() string { return uuid.NewString() }
