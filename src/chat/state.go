// Package chat implements the per-session conversation actor: a single-writer
// state machine that owns one session's message log, drives model generation,
// and streams partial output to callers.
package chat

import (
	"errors"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/storage"
)

var (
	// ErrEmptyMessage is returned when a send carries no content after trimming.
	ErrEmptyMessage = errors.New("message content is required")

	// ErrEmptyModel is returned when a model update carries no model id.
	ErrEmptyModel = errors.New("model is required")

	// ErrAlreadyProcessing is returned when a generation is already in flight
	// for the session. Callers should retry later; requests are not queued.
	ErrAlreadyProcessing = errors.New("a response is already being generated for this session")
)

// errorReplyText is the user-facing content of the synthetic assistant
// message appended when generation fails.
const errorReplyText = "Nexus encountered an error while processing your request."

// DefaultModel is used for sessions that never selected a model.
const DefaultModel = "google-ai-studio/gemini-2.0-flash"

// ConversationState is a point-in-time snapshot of one session's state.
// StreamingMessage holds partial assistant output while a generation is in
// flight and is never part of the committed history.
type ConversationState struct {
	SessionID        string            `json:"sessionId"`
	Messages         []storage.Message `json:"messages"`
	Model            string            `json:"model"`
	IsProcessing     bool              `json:"isProcessing"`
	StreamingMessage string            `json:"streamingMessage"`
}

// ChunkFunc receives incremental assistant output in generation order.
// Implementations may block; a slow consumer slows the generation loop rather
// than growing an unbounded buffer.
type ChunkFunc func(chunk string)

// SendRequest describes one send-message call.
type SendRequest struct {
	// Content is the user message body. Required.
	Content string
	// Model, when set and different from the session's current model,
	// switches the session to it before generating.
	Model string
	// ThreadID roots the message in a thread instead of the main timeline.
	ThreadID string
	// OnChunk, when set, receives incremental output before the final commit.
	OnChunk ChunkFunc
}
