package storage

// Message is one durable entry in a session's message log. Timestamp is a
// millisecond logical ordering key, monotonically non-decreasing per session.
type Message struct {
	ID                 string       `json:"id" db:"id"`
	SessionID          string       `json:"-" db:"session_id"`
	Role               string       `json:"role" db:"role"`
	Content            string       `json:"content" db:"content"`
	ThreadID           *string      `json:"threadId,omitempty" db:"thread_id"`
	ToolCalls          ToolCallList `json:"toolCalls,omitempty" db:"tool_calls"`
	ReplyCount         int          `json:"replyCount,omitempty" db:"reply_count"`
	LastReplyTimestamp int64        `json:"lastReplyTimestamp,omitempty" db:"last_reply_ts"`
	Timestamp          int64        `json:"timestamp" db:"created_at_ms"`
}

// Conversation carries per-session settings that outlive individual messages.
type Conversation struct {
	SessionID string `json:"sessionId" db:"session_id"`
	Model     string `json:"model" db:"model"`
	UpdatedAt int64  `json:"updatedAt" db:"updated_at_ms"`
}

// SessionInfo is a channel's directory record.
type SessionInfo struct {
	ID          string `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	WorkspaceID string `json:"workspaceId" db:"workspace_id"`
	CreatedAt   int64  `json:"createdAt" db:"created_at_ms"`
	LastActive  int64  `json:"lastActive" db:"last_active_ms"`
}

// Workspace is a named grouping of sessions.
type Workspace struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Initials  string `json:"initials" db:"initials"`
	Color     string `json:"color" db:"color"`
	CreatedAt int64  `json:"createdAt" db:"created_at_ms"`
}

// UserProfile is the per-scope profile singleton.
type UserProfile struct {
	Scope       string `json:"-" db:"scope"`
	Name        string `json:"name" db:"name"`
	AvatarColor string `json:"avatarColor" db:"avatar_color"`
	Status      string `json:"status" db:"status"`
	UpdatedAt   int64  `json:"updatedAt" db:"updated_at_ms"`
}
