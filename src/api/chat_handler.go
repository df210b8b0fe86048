package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/chat"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/directory"
)

// ChatHandler serves the per-session conversation endpoints.
type ChatHandler struct {
	registry     *chat.Registry
	directory    *directory.Service
	streamBuffer int
}

// NewChatHandler creates a chat handler. streamBuffer bounds the chunk
// channel between the generation loop and the response writer; a slow client
// blocks the producer once it fills.
func NewChatHandler(registry *chat.Registry, dir *directory.Service, streamBuffer int) *ChatHandler {
	if streamBuffer <= 0 {
		streamBuffer = 16
	}
	return &ChatHandler{
		registry:     registry,
		directory:    dir,
		streamBuffer: streamBuffer,
	}
}

// actor resolves the session actor for the request, responding with a
// routing failure when it cannot.
func (h *ChatHandler) actor(c *gin.Context) *chat.Actor {
	sessionID := c.Param("sessionId")
	actor, err := h.registry.Get(c.Request.Context(), sessionID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to route to session actor", "session_id", sessionID, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to route to session")
		return nil
	}
	return actor
}

// GetMessages handles GET /chat/{sessionId}/messages.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	actor := h.actor(c)
	if actor == nil {
		return
	}
	respondOK(c, http.StatusOK, actor.GetState())
}

// Send handles POST /chat/{sessionId}/chat.
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "message is required")
		return
	}

	actor := h.actor(c)
	if actor == nil {
		return
	}

	if req.Stream {
		h.sendStreaming(c, actor, req)
	} else {
		h.sendBuffered(c, actor, req)
	}
}

func (h *ChatHandler) sendBuffered(c *gin.Context, actor *chat.Actor, req SendMessageRequest) {
	state, err := actor.SendMessage(c.Request.Context(), chat.SendRequest{
		Content:  req.Message,
		Model:    req.Model,
		ThreadID: req.ThreadID,
	})
	if err != nil {
		h.respondSendError(c, err)
		return
	}

	h.bumpActivity(c, actor.SessionID())
	respondOK(c, http.StatusOK, state)
}

// sendStreaming runs the generation in its own goroutine and relays chunks
// to the response body as they arrive. The body carries no envelope; callers
// fetch the committed state afterwards. A send that fails before producing
// any output still gets a JSON error status.
func (h *ChatHandler) sendStreaming(c *gin.Context, actor *chat.Actor, req SendMessageRequest) {
	chunks := make(chan string, h.streamBuffer)
	done := make(chan error, 1)

	go func() {
		_, err := actor.SendMessage(c.Request.Context(), chat.SendRequest{
			Content:  req.Message,
			Model:    req.Model,
			ThreadID: req.ThreadID,
			OnChunk: func(chunk string) {
				chunks <- chunk
			},
		})
		close(chunks)
		done <- err
	}()

	clientGone := false
	wroteHeader := false
	for chunk := range chunks {
		if clientGone {
			// Keep draining so the producer never blocks on a dead client.
			continue
		}
		if !wroteHeader {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("Cache-Control", "no-cache")
			c.Status(http.StatusOK)
			wroteHeader = true
		}
		if _, err := c.Writer.WriteString(chunk); err != nil {
			clientGone = true
			continue
		}
		c.Writer.Flush()
	}

	err := <-done
	if err != nil {
		if wroteHeader {
			slog.ErrorContext(c.Request.Context(), "send failed mid-stream", "session_id", actor.SessionID(), "error", err)
			return
		}
		h.respondSendError(c, err)
		return
	}

	h.bumpActivity(c, actor.SessionID())
	if !wroteHeader {
		// Generation produced no chunks (e.g. it failed and a synthetic
		// message was committed); close the stream empty.
		c.Status(http.StatusOK)
	}
}

// Clear handles DELETE /chat/{sessionId}/clear.
func (h *ChatHandler) Clear(c *gin.Context) {
	actor := h.actor(c)
	if actor == nil {
		return
	}

	state, err := actor.Clear(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to clear conversation", "session_id", actor.SessionID(), "error", err)
		respondError(c, http.StatusInternalServerError, "failed to clear conversation")
		return
	}
	respondOK(c, http.StatusOK, state)
}

// UpdateModel handles POST /chat/{sessionId}/model.
func (h *ChatHandler) UpdateModel(c *gin.Context) {
	var req UpdateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "model is required")
		return
	}

	actor := h.actor(c)
	if actor == nil {
		return
	}

	state, err := actor.SetModel(c.Request.Context(), req.Model)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyModel) {
			respondError(c, http.StatusBadRequest, "model is required")
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to update model", "session_id", actor.SessionID(), "error", err)
		respondError(c, http.StatusInternalServerError, "failed to update model")
		return
	}
	respondOK(c, http.StatusOK, state)
}

func (h *ChatHandler) respondSendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		respondError(c, http.StatusBadRequest, "message is required")
	case errors.Is(err, chat.ErrAlreadyProcessing):
		respondError(c, http.StatusConflict, "a response is already being generated")
	default:
		slog.ErrorContext(c.Request.Context(), "failed to process message", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to process message")
	}
}

// bumpActivity records channel activity in the directory. Sessions that were
// never registered are a no-op.
func (h *ChatHandler) bumpActivity(c *gin.Context, sessionID string) {
	if err := h.directory.UpdateSessionActivity(c.Request.Context(), sessionID); err != nil {
		slog.WarnContext(c.Request.Context(), "failed to bump session activity", "session_id", sessionID, "error", err)
	}
}
