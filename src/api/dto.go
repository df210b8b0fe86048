// Package api is the HTTP transport: it routes requests to the session actor
// for a conversation id and to the directory service, translating between the
// wire envelope and actor calls. It holds no logic of its own.
package api

import "github.com/gin-gonic/gin"

// Envelope is the shared response shape for all non-streaming endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendMessageRequest is the body of POST /chat/{sessionId}/chat.
type SendMessageRequest struct {
	Message  string `json:"message" binding:"required"`
	Model    string `json:"model,omitempty"`
	Stream   bool   `json:"stream,omitempty"`
	ThreadID string `json:"threadId,omitempty"`
}

// UpdateModelRequest is the body of POST /chat/{sessionId}/model.
type UpdateModelRequest struct {
	Model string `json:"model" binding:"required"`
}

// CreateSessionRequest is the body of POST /sessions. All fields optional.
type CreateSessionRequest struct {
	Title        string `json:"title,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	FirstMessage string `json:"firstMessage,omitempty"`
	WorkspaceID  string `json:"workspaceId,omitempty"`
}

// CreateSessionResponse is the payload returned by POST /sessions.
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	Title     string `json:"title"`
}

// UpdateSessionTitleRequest is the body of PUT /sessions/{sessionId}/title.
type UpdateSessionTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateWorkspaceRequest is the body of POST /workspaces.
type CreateWorkspaceRequest struct {
	Name     string `json:"name" binding:"required"`
	Initials string `json:"initials,omitempty"`
	Color    string `json:"color,omitempty"`
}

// DeleteResponse reports whether a delete removed anything.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ClearedResponse reports how many records a bulk delete removed.
type ClearedResponse struct {
	Cleared int `json:"cleared"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Error: message})
}
