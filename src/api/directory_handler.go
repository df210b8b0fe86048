package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/chat"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/directory"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/storage"
)

// maxDerivedTitleLen caps session titles derived from a first message.
const maxDerivedTitleLen = 40

// DirectoryHandler serves the workspace, session, and profile endpoints.
type DirectoryHandler struct {
	directory *directory.Service
	registry  *chat.Registry
}

// NewDirectoryHandler creates a directory handler. The registry is needed so
// deleting a session also drops its resident actor.
func NewDirectoryHandler(dir *directory.Service, registry *chat.Registry) *DirectoryHandler {
	return &DirectoryHandler{directory: dir, registry: registry}
}

// ListSessions handles GET /sessions?workspaceId=.
func (h *DirectoryHandler) ListSessions(c *gin.Context) {
	sessions := h.directory.ListSessions(c.Query("workspaceId"))
	respondOK(c, http.StatusOK, sessions)
}

// GetSession handles GET /sessions/{sessionId}.
func (h *DirectoryHandler) GetSession(c *gin.Context) {
	session := h.directory.GetSession(c.Param("sessionId"))
	if session == nil {
		respondError(c, http.StatusNotFound, "session not found")
		return
	}
	respondOK(c, http.StatusOK, session)
}

// CreateSession handles POST /sessions. The body is optional; a missing
// title is derived from the first message, falling back to "#general".
func (h *DirectoryHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	title := req.Title
	if title == "" {
		title = deriveSessionTitle(req.FirstMessage)
	}

	session, err := h.directory.AddSession(c.Request.Context(), sessionID, title, req.WorkspaceID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to create session", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondOK(c, http.StatusOK, CreateSessionResponse{SessionID: session.ID, Title: session.Title})
}

// DeleteSession handles DELETE /sessions/{sessionId}.
func (h *DirectoryHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("sessionId")

	deleted, err := h.directory.RemoveSession(c.Request.Context(), sessionID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to delete session", "session_id", sessionID, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to delete session")
		return
	}
	h.registry.Evict(sessionID)

	respondOK(c, http.StatusOK, DeleteResponse{Deleted: deleted})
}

// ClearSessions handles DELETE /sessions.
func (h *DirectoryHandler) ClearSessions(c *gin.Context) {
	cleared, err := h.directory.ClearAllSessions(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to clear sessions", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to clear sessions")
		return
	}
	respondOK(c, http.StatusOK, ClearedResponse{Cleared: cleared})
}

// UpdateSessionTitle handles PUT /sessions/{sessionId}/title.
func (h *DirectoryHandler) UpdateSessionTitle(c *gin.Context) {
	var req UpdateSessionTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "title is required")
		return
	}

	sessionID := c.Param("sessionId")
	ok, err := h.directory.UpdateSessionTitle(c.Request.Context(), sessionID, req.Title)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to update session title", "session_id", sessionID, "error", err)
		respondError(c, http.StatusInternalServerError, "failed to update session title")
		return
	}
	if !ok {
		respondError(c, http.StatusNotFound, "session not found")
		return
	}
	respondOK(c, http.StatusOK, h.directory.GetSession(sessionID))
}

// ListWorkspaces handles GET /workspaces.
func (h *DirectoryHandler) ListWorkspaces(c *gin.Context) {
	respondOK(c, http.StatusOK, h.directory.ListWorkspaces())
}

// CreateWorkspace handles POST /workspaces.
func (h *DirectoryHandler) CreateWorkspace(c *gin.Context) {
	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}

	workspace, err := h.directory.AddWorkspace(c.Request.Context(), storage.Workspace{
		Name:     req.Name,
		Initials: req.Initials,
		Color:    req.Color,
	})
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to create workspace", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to create workspace")
		return
	}
	respondOK(c, http.StatusOK, workspace)
}

// GetProfile handles GET /user/profile.
func (h *DirectoryHandler) GetProfile(c *gin.Context) {
	respondOK(c, http.StatusOK, h.directory.GetUserProfile())
}

// UpdateProfile handles PUT /user/profile.
func (h *DirectoryHandler) UpdateProfile(c *gin.Context) {
	var patch directory.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.directory.UpdateUserProfile(c.Request.Context(), patch)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to update profile", "error", err)
		respondError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// deriveSessionTitle builds a channel title from the opening message,
// collapsing whitespace and capping the length.
func deriveSessionTitle(firstMessage string) string {
	cleaned := strings.Join(strings.Fields(firstMessage), " ")
	if cleaned == "" {
		return "#general"
	}
	if len(cleaned) > maxDerivedTitleLen {
		return cleaned[:maxDerivedTitleLen-3] + "..."
	}
	return cleaned
}
