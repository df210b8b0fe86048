// Package directory is the workspace-scoped metadata store: it owns the
// Workspace, SessionInfo, and UserProfile collections, caching them in memory
// and writing every mutation through to storage before acknowledging it.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/storage"
)

const (
	// DefaultWorkspaceID is assigned to sessions created without a workspace.
	DefaultWorkspaceID = "nexus"

	// defaultWorkspaceColor matches the client's workspace chip styling.
	defaultWorkspaceColor = "bg-indigo-600"

	profileScope = "default"
)

// defaultProfile is what GetUserProfile returns before the first write.
func defaultProfile() storage.UserProfile {
	return storage.UserProfile{
		Scope:       profileScope,
		Name:        "Nexus User",
		AvatarColor: "bg-[#E8912D]",
		Status:      "Active",
		UpdatedAt:   time.Now().UnixMilli(),
	}
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Name        *string `json:"name,omitempty"`
	AvatarColor *string `json:"avatarColor,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Service is the directory actor for one deployment scope. All operations are
// serialized by its mutex; reads serve the cache, mutations persist before
// they are acknowledged.
type Service struct {
	store  *storage.DB
	logger *slog.Logger

	mu         sync.Mutex
	sessions   map[string]storage.SessionInfo
	workspaces map[string]storage.Workspace
	profile    storage.UserProfile
}

// Open loads all three collections from storage and returns a ready service.
func Open(ctx context.Context, store *storage.DB, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		store:      store,
		logger:     logger.With("component", "directory"),
		sessions:   make(map[string]storage.SessionInfo),
		workspaces: make(map[string]storage.Workspace),
		profile:    defaultProfile(),
	}

	sessions, err := storage.ListSessions(ctx, store.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	for _, session := range sessions {
		s.sessions[session.ID] = session
	}

	workspaces, err := storage.ListWorkspaces(ctx, store.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to load workspaces: %w", err)
	}
	for _, ws := range workspaces {
		s.workspaces[ws.ID] = ws
	}

	profile, err := storage.GetUserProfile(ctx, store.DB(), profileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	if profile != nil {
		s.profile = *profile
	}

	s.logger.Info("directory loaded", "sessions", len(s.sessions), "workspaces", len(s.workspaces))
	return s, nil
}

// AddWorkspace inserts or overwrites a workspace by id, filling in defaults
// for missing identity, initials, color, and creation time.
func (s *Service) AddWorkspace(ctx context.Context, ws storage.Workspace) (*storage.Workspace, error) {
	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}
	if ws.Initials == "" && ws.Name != "" {
		ws.Initials = strings.ToUpper(ws.Name[:1])
	}
	if ws.Color == "" {
		ws.Color = defaultWorkspaceColor
	}
	if ws.CreatedAt == 0 {
		ws.CreatedAt = time.Now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.UpsertWorkspace(ctx, s.store.DB(), &ws); err != nil {
		return nil, fmt.Errorf("failed to persist workspace: %w", err)
	}
	s.workspaces[ws.ID] = ws
	return &ws, nil
}

// ListWorkspaces returns all workspaces in creation order.
func (s *Service) ListWorkspaces() []storage.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	workspaces := make([]storage.Workspace, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		workspaces = append(workspaces, ws)
	}
	sort.Slice(workspaces, func(i, j int) bool {
		if workspaces[i].CreatedAt != workspaces[j].CreatedAt {
			return workspaces[i].CreatedAt < workspaces[j].CreatedAt
		}
		return workspaces[i].ID < workspaces[j].ID
	})
	return workspaces
}

// GetUserProfile returns the current profile; defaults exist before the
// first write.
func (s *Service) GetUserProfile() storage.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// UpdateUserProfile merges non-nil patch fields into the profile and stamps
// a fresh update time.
func (s *Service) UpdateUserProfile(ctx context.Context, patch ProfilePatch) (*storage.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.profile
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.AvatarColor != nil {
		updated.AvatarColor = *patch.AvatarColor
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	updated.UpdatedAt = time.Now().UnixMilli()

	if err := storage.UpsertUserProfile(ctx, s.store.DB(), &updated); err != nil {
		return nil, fmt.Errorf("failed to persist user profile: %w", err)
	}
	s.profile = updated
	return &updated, nil
}

// AddSession creates a session record. Title defaults to a timestamp-derived
// label, workspace to the default workspace.
func (s *Service) AddSession(ctx context.Context, sessionID, title, workspaceID string) (*storage.SessionInfo, error) {
	now := time.Now().UnixMilli()
	if title == "" {
		title = "Chat " + time.UnixMilli(now).Format("1/2/2006")
	}
	if workspaceID == "" {
		workspaceID = DefaultWorkspaceID
	}

	session := storage.SessionInfo{
		ID:          sessionID,
		Title:       title,
		WorkspaceID: workspaceID,
		CreatedAt:   now,
		LastActive:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.UpsertSession(ctx, s.store.DB(), &session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	s.sessions[session.ID] = session
	return &session, nil
}

// GetSession returns a session record, or nil if unknown.
func (s *Service) GetSession(sessionID string) *storage.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return &session
	}
	return nil
}

// SessionCount returns the number of session records.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RemoveSession deletes a session record. Idempotent; returns whether a
// record was removed.
func (s *Service) RemoveSession(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := storage.DeleteSession(ctx, s.store.DB(), sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	delete(s.sessions, sessionID)
	return deleted, nil
}

// ClearAllSessions deletes every session record and returns how many were
// removed. Idempotent.
func (s *Service) ClearAllSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := storage.DeleteAllSessions(ctx, s.store.DB())
	if err != nil {
		return 0, fmt.Errorf("failed to clear sessions: %w", err)
	}
	s.sessions = make(map[string]storage.SessionInfo)
	return int(removed), nil
}

// UpdateSessionActivity bumps a session's last-active time. Unknown sessions
// are a no-op, not an error.
func (s *Service) UpdateSessionActivity(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}

	session.LastActive = time.Now().UnixMilli()
	if err := storage.UpdateSessionActivity(ctx, s.store.DB(), sessionID, session.LastActive); err != nil {
		return fmt.Errorf("failed to persist session activity: %w", err)
	}
	s.sessions[sessionID] = session
	return nil
}

// UpdateSessionTitle renames a session. Returns false, without error, when
// the session does not exist.
func (s *Service) UpdateSessionTitle(ctx context.Context, sessionID, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}

	session.Title = title
	if _, err := storage.UpdateSessionTitle(ctx, s.store.DB(), sessionID, title); err != nil {
		return false, fmt.Errorf("failed to persist session title: %w", err)
	}
	s.sessions[sessionID] = session
	return true, nil
}

// ListSessions returns session records sorted by last activity, most recent
// first. A non-empty workspaceID filters to that workspace.
func (s *Service) ListSessions(workspaceID string) []storage.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]storage.SessionInfo, 0, len(s.sessions))
	for _, session := range s.sessions {
		if workspaceID != "" && session.WorkspaceID != workspaceID {
			continue
		}
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].LastActive != sessions[j].LastActive {
			return sessions[i].LastActive > sessions[j].LastActive
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions
}
