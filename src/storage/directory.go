package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// ListWorkspaces retrieves all workspaces in creation order.
func ListWorkspaces(ctx context.Context, db sqlscan.Querier) ([]Workspace, error) {
	query := `SELECT id, name, initials, color, created_at_ms FROM workspaces ORDER BY created_at_ms, id`
	var workspaces []Workspace
	if err := sqlscan.Select(ctx, db, &workspaces, query); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// UpsertWorkspace inserts or overwrites a workspace by id.
func UpsertWorkspace(ctx context.Context, db Execer, ws *Workspace) error {
	query := `INSERT INTO workspaces (id, name, initials, color, created_at_ms) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, initials = excluded.initials,
		color = excluded.color, created_at_ms = excluded.created_at_ms`
	_, err := db.ExecContext(ctx, query, ws.ID, ws.Name, ws.Initials, ws.Color, ws.CreatedAt)
	return err
}

// GetUserProfile retrieves the profile for a scope, or nil if never written.
func GetUserProfile(ctx context.Context, db sqlscan.Querier, scope string) (*UserProfile, error) {
	query := `SELECT scope, name, avatar_color, status, updated_at_ms FROM user_profile WHERE scope = ?`
	var profile UserProfile
	err := sqlscan.Get(ctx, db, &profile, query, scope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertUserProfile stores the profile for a scope.
func UpsertUserProfile(ctx context.Context, db Execer, profile *UserProfile) error {
	query := `INSERT INTO user_profile (scope, name, avatar_color, status, updated_at_ms) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET name = excluded.name, avatar_color = excluded.avatar_color,
		status = excluded.status, updated_at_ms = excluded.updated_at_ms`
	_, err := db.ExecContext(ctx, query, profile.Scope, profile.Name, profile.AvatarColor, profile.Status, profile.UpdatedAt)
	return err
}

// ListSessions retrieves all session records.
func ListSessions(ctx context.Context, db sqlscan.Querier) ([]SessionInfo, error) {
	query := `SELECT id, title, workspace_id, created_at_ms, last_active_ms FROM sessions`
	var sessions []SessionInfo
	if err := sqlscan.Select(ctx, db, &sessions, query); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpsertSession inserts or overwrites a session record by id.
func UpsertSession(ctx context.Context, db Execer, session *SessionInfo) error {
	query := `INSERT INTO sessions (id, title, workspace_id, created_at_ms, last_active_ms) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, workspace_id = excluded.workspace_id,
		created_at_ms = excluded.created_at_ms, last_active_ms = excluded.last_active_ms`
	_, err := db.ExecContext(ctx, query, session.ID, session.Title, session.WorkspaceID, session.CreatedAt, session.LastActive)
	return err
}

// DeleteSession removes a session record. Returns true if a row was removed.
func DeleteSession(ctx context.Context, db Execer, sessionID string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAllSessions removes every session record. Returns the removed count.
func DeleteAllSessions(ctx context.Context, db Execer) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// UpdateSessionActivity bumps a session's last-active time.
func UpdateSessionActivity(ctx context.Context, db Execer, sessionID string, lastActive int64) error {
	_, err := db.ExecContext(ctx, `UPDATE sessions SET last_active_ms = ? WHERE id = ?`, lastActive, sessionID)
	return err
}

// UpdateSessionTitle renames a session. Returns true if the session exists.
func UpdateSessionTitle(ctx context.Context, db Execer, sessionID, title string) (bool, error) {
	result, err := db.ExecContext(ctx, `UPDATE sessions SET title = ? WHERE id = ?`, title, sessionID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
