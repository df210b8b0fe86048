package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMessageRoundTrip(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()

	threadID := "root-1"
	msg := &Message{
		ID:        "m1",
		SessionID: "s1",
		Role:      "assistant",
		Content:   "hello",
		ThreadID:  &threadID,
		ToolCalls: ToolCallList{
			{ID: "call-1", Name: "lookup", Arguments: json.RawMessage(`{"q":"x"}`)},
		},
		Timestamp: 1000,
	}
	require.NoError(t, InsertMessage(ctx, store.DB(), msg))

	messages, err := GetMessagesBySessionID(ctx, store.DB(), "s1")
	require.NoError(t, err)
	require.Len(t, messages, 1)

	got := messages[0]
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "assistant", got.Role)
	require.NotNil(t, got.ThreadID)
	assert.Equal(t, "root-1", *got.ThreadID)
	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, "lookup", got.ToolCalls[0].Name)
	assert.JSONEq(t, `{"q":"x"}`, string(got.ToolCalls[0].Arguments))
}

func TestGetMessagesOrderAndIsolation(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()

	for _, m := range []Message{
		{ID: "b", SessionID: "s1", Role: "user", Content: "second", Timestamp: 200},
		{ID: "a", SessionID: "s1", Role: "user", Content: "first", Timestamp: 100},
		{ID: "c", SessionID: "other", Role: "user", Content: "elsewhere", Timestamp: 50},
	} {
		msg := m
		require.NoError(t, InsertMessage(ctx, store.DB(), &msg))
	}

	messages, err := GetMessagesBySessionID(ctx, store.DB(), "s1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "a", messages[0].ID)
	assert.Equal(t, "b", messages[1].ID)
}

func TestBumpThreadRoot(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()

	root := &Message{ID: "root", SessionID: "s1", Role: "user", Content: "topic", Timestamp: 100}
	require.NoError(t, InsertMessage(ctx, store.DB(), root))

	require.NoError(t, BumpThreadRoot(ctx, store.DB(), "s1", "root", 200))
	require.NoError(t, BumpThreadRoot(ctx, store.DB(), "s1", "root", 300))

	messages, err := GetMessagesBySessionID(ctx, store.DB(), "s1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, 2, messages[0].ReplyCount)
	assert.Equal(t, int64(300), messages[0].LastReplyTimestamp)
}

func TestDeleteMessagesBySessionID(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b"} {
		msg := &Message{ID: id, SessionID: "s1", Role: "user", Content: "x", Timestamp: int64(i)}
		require.NoError(t, InsertMessage(ctx, store.DB(), msg))
	}
	keep := &Message{ID: "k", SessionID: "s2", Role: "user", Content: "kept", Timestamp: 1}
	require.NoError(t, InsertMessage(ctx, store.DB(), keep))

	deleted, err := DeleteMessagesBySessionID(ctx, store.DB(), "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = DeleteMessagesBySessionID(ctx, store.DB(), "s1")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	remaining, err := GetMessagesBySessionID(ctx, store.DB(), "s2")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestConversationUpsert(t *testing.T) {
	store := openTestDB(t)
	ctx := context.Background()

	conv, err := GetConversation(ctx, store.DB(), "s1")
	require.NoError(t, err)
	assert.Nil(t, conv)

	require.NoError(t, UpsertConversation(ctx, store.DB(), &Conversation{SessionID: "s1", Model: "m1"}))
	require.NoError(t, UpsertConversation(ctx, store.DB(), &Conversation{SessionID: "s1", Model: "m2"}))

	conv, err = GetConversation(ctx, store.DB(), "s1")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "m2", conv.Model)
	assert.NotZero(t, conv.UpdatedAt)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(path)
	require.NoError(t, err)
	msg := &Message{ID: "m1", SessionID: "s1", Role: "user", Content: "hi", Timestamp: 1}
	require.NoError(t, InsertMessage(context.Background(), store.DB(), msg))
	require.NoError(t, store.Close())

	// Reopening replays no migrations and keeps the data.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	messages, err := GetMessagesBySessionID(context.Background(), store.DB(), "s1")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}
