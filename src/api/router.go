package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/chat"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/directory"
)

// RouterConfig holds the services the router dispatches to.
type RouterConfig struct {
	Registry     *chat.Registry
	Directory    *directory.Service
	Logger       *slog.Logger
	StreamBuffer int
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery())

	chatHandler := NewChatHandler(cfg.Registry, cfg.Directory, cfg.StreamBuffer)
	directoryHandler := NewDirectoryHandler(cfg.Directory, cfg.Registry)

	chatRoutes(r, chatHandler)
	directoryRoutes(r, directoryHandler)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not found")
	})

	return r
}

func chatRoutes(r *gin.Engine, h *ChatHandler) {
	rg := r.Group("/chat/:sessionId")
	rg.GET("/messages", h.GetMessages)
	rg.POST("/chat", h.Send)
	rg.DELETE("/clear", h.Clear)
	rg.POST("/model", h.UpdateModel)
}

func directoryRoutes(r *gin.Engine, h *DirectoryHandler) {
	r.GET("/sessions", h.ListSessions)
	r.POST("/sessions", h.CreateSession)
	r.DELETE("/sessions", h.ClearSessions)
	r.GET("/sessions/:sessionId", h.GetSession)
	r.DELETE("/sessions/:sessionId", h.DeleteSession)
	r.PUT("/sessions/:sessionId/title", h.UpdateSessionTitle)

	r.GET("/workspaces", h.ListWorkspaces)
	r.POST("/workspaces", h.CreateWorkspace)

	r.GET("/user/profile", h.GetProfile)
	r.PUT("/user/profile", h.UpdateProfile)
}
