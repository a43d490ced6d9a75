package model

import (
	"errors"
	"fmt"
)

// ChatHistoryLimit is the number of most recent turns forwarded upstream.
const ChatHistoryLimit = 10

// Chat roles as understood by the upstream generative API.
const (
	ChatRoleUser  = "user"
	ChatRoleModel = "model"
)

// ChatTurn is one message of a conversation.
type ChatTurn struct {
	Role    string
	Content string
}

// ChatPrompt is the fully assembled conversation sent upstream.
type ChatPrompt struct {
	Turns           []ChatTurn
	Temperature     float64
	MaxOutputTokens int
}

var (
	// ErrChatNotConfigured means no API credential is available for the LLM relay.
	ErrChatNotConfigured = errors.New("chat assistant is not configured: missing API key")

	// ErrUpstreamTimeout means the generative API did not answer within the deadline.
	ErrUpstreamTimeout = errors.New("chat upstream timed out")
)

// UpstreamError is a network failure or non-success response from the generative API.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("chat upstream error (status %d): %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("chat upstream error: %v", e.Err)
	default:
		return "chat upstream error: " + e.Message
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
