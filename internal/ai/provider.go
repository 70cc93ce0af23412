package ai

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotConfigured is returned by provider factories when credentials are missing.
var ErrNotConfigured = errors.New("ai provider not configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider produces one assistant reply for an ordered conversation.
// Implementations must honour ctx cancellation.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
