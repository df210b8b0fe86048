package directory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/storage"
)

func newTestService(t *testing.T) (*Service, *storage.DB) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc, err := Open(context.Background(), store, nil)
	require.NoError(t, err)
	return svc, store
}

func stringPtr(s string) *string { return &s }

func TestAddSessionDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	session, err := svc.AddSession(context.Background(), "s1", "", "")
	require.NoError(t, err)

	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, DefaultWorkspaceID, session.WorkspaceID)
	expectedTitle := "Chat " + time.UnixMilli(session.CreatedAt).Format("1/2/2006")
	assert.Equal(t, expectedTitle, session.Title)
	assert.Equal(t, session.CreatedAt, session.LastActive)
}

func TestListSessionsOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddSession(ctx, "a", "first", "")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = svc.AddSession(ctx, "b", "second", "")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = svc.AddSession(ctx, "c", "third", "")
	require.NoError(t, err)

	sessions := svc.ListSessions("")
	require.Len(t, sessions, 3)
	assert.Equal(t, "c", sessions[0].ID)
	assert.Equal(t, "b", sessions[1].ID)
	assert.Equal(t, "a", sessions[2].ID)

	// Touching a session moves it to the front.
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, svc.UpdateSessionActivity(ctx, "a"))
	sessions = svc.ListSessions("")
	assert.Equal(t, "a", sessions[0].ID)
}

func TestListSessionsFiltersByWorkspace(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddSession(ctx, "s1", "one", "ws-a")
	require.NoError(t, err)
	_, err = svc.AddSession(ctx, "s2", "two", "ws-b")
	require.NoError(t, err)

	sessions := svc.ListSessions("ws-a")
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)

	assert.Len(t, svc.ListSessions(""), 2)
}

func TestUpdateSessionActivityUnknownIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	assert.NoError(t, svc.UpdateSessionActivity(context.Background(), "missing"))
}

func TestUpdateSessionTitle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddSession(ctx, "s1", "old title", "")
	require.NoError(t, err)

	ok, err := svc.UpdateSessionTitle(ctx, "s1", "new title")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new title", svc.GetSession("s1").Title)

	ok, err = svc.UpdateSessionTitle(ctx, "missing", "whatever")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveSessionIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddSession(ctx, "s1", "", "")
	require.NoError(t, err)

	removed, err := svc.RemoveSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, svc.GetSession("s1"))

	removed, err = svc.RemoveSession(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClearAllSessions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.AddSession(ctx, id, "", "")
		require.NoError(t, err)
	}

	cleared, err := svc.ClearAllSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cleared)
	assert.Equal(t, 0, svc.SessionCount())

	cleared, err = svc.ClearAllSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared)
}

func TestUserProfileDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	profile := svc.GetUserProfile()
	assert.Equal(t, "Nexus User", profile.Name)
	assert.Equal(t, "bg-[#E8912D]", profile.AvatarColor)
	assert.Equal(t, "Active", profile.Status)
}

func TestUpdateUserProfileMergesPartialPatch(t *testing.T) {
	svc, _ := newTestService(t)
	before := svc.GetUserProfile()

	time.Sleep(2 * time.Millisecond)
	updated, err := svc.UpdateUserProfile(context.Background(), ProfilePatch{
		Name:   stringPtr("Ann"),
		Status: stringPtr("busy"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, "busy", updated.Status)
	assert.Equal(t, before.AvatarColor, updated.AvatarColor, "unpatched fields are kept")
	assert.Greater(t, updated.UpdatedAt, before.UpdatedAt)

	// A second patch on a different field keeps the earlier one.
	updated, err = svc.UpdateUserProfile(context.Background(), ProfilePatch{
		AvatarColor: stringPtr("bg-red-500"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, "bg-red-500", updated.AvatarColor)
}

func TestAddWorkspaceDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	ws, err := svc.AddWorkspace(context.Background(), storage.Workspace{Name: "engineering"})
	require.NoError(t, err)

	assert.NotEmpty(t, ws.ID)
	assert.Equal(t, "E", ws.Initials)
	assert.Equal(t, "bg-indigo-600", ws.Color)
	assert.NotZero(t, ws.CreatedAt)
}

func TestListWorkspacesOrdering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddWorkspace(ctx, storage.Workspace{ID: "w1", Name: "alpha", CreatedAt: 100})
	require.NoError(t, err)
	_, err = svc.AddWorkspace(ctx, storage.Workspace{ID: "w2", Name: "beta", CreatedAt: 50})
	require.NoError(t, err)

	workspaces := svc.ListWorkspaces()
	require.Len(t, workspaces, 2)
	assert.Equal(t, "w2", workspaces[0].ID)
	assert.Equal(t, "w1", workspaces[1].ID)
}

func TestDirectorySurvivesReopen(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddSession(ctx, "s1", "kept", "ws-a")
	require.NoError(t, err)
	_, err = svc.AddWorkspace(ctx, storage.Workspace{ID: "ws-a", Name: "alpha"})
	require.NoError(t, err)
	_, err = svc.UpdateUserProfile(ctx, ProfilePatch{Name: stringPtr("Ann")})
	require.NoError(t, err)

	reopened, err := Open(ctx, store, nil)
	require.NoError(t, err)

	require.NotNil(t, reopened.GetSession("s1"))
	assert.Equal(t, "kept", reopened.GetSession("s1").Title)
	assert.Len(t, reopened.ListWorkspaces(), 1)
	assert.Equal(t, "Ann", reopened.GetUserProfile().Name)
}
