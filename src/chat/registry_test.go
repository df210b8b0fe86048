package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetReturnsSameActor(t *testing.T) {
	store := newTestStore(t)
	registry := newTestRegistry(t, store, &fakeProvider{client: &fakeClient{}})

	a1, err := registry.Get(context.Background(), "s1")
	require.NoError(t, err)
	a2, err := registry.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Same(t, a1, a2)

	other, err := registry.Get(context.Background(), "s2")
	require.NoError(t, err)
	assert.NotSame(t, a1, other)
	assert.Equal(t, 2, registry.Len())
}

func TestRegistryEvict(t *testing.T) {
	store := newTestStore(t)
	registry := newTestRegistry(t, store, &fakeProvider{client: &fakeClient{reply: "ok"}})

	actor, err := registry.Get(context.Background(), "s1")
	require.NoError(t, err)
	_, err = actor.SendMessage(context.Background(), SendRequest{Content: "hi"})
	require.NoError(t, err)

	assert.True(t, registry.Evict("s1"))
	assert.False(t, registry.Evict("s1"))
	assert.Equal(t, 0, registry.Len())

	// The rebuilt actor recovers the durable log.
	actor, err = registry.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, actor.GetState().Messages, 2)
}

func TestRegistryEvictIdle(t *testing.T) {
	store := newTestStore(t)
	client := &fakeClient{
		reply:   "ok",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	registry := newTestRegistry(t, store, &fakeProvider{client: client})

	busy, err := registry.Get(context.Background(), "busy")
	require.NoError(t, err)
	_, err = registry.Get(context.Background(), "idle")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		busy.SendMessage(context.Background(), SendRequest{Content: "hi"})
	}()
	select {
	case <-client.started:
	case <-time.After(5 * time.Second):
		t.Fatal("generation never started")
	}

	// Only the actor with no generation in flight is swept.
	assert.Equal(t, 1, registry.EvictIdle(0))
	assert.Equal(t, 1, registry.Len())

	close(client.release)
	<-done

	assert.Equal(t, 1, registry.EvictIdle(0))
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryEvictIdleRespectsThreshold(t *testing.T) {
	store := newTestStore(t)
	registry := newTestRegistry(t, store, &fakeProvider{client: &fakeClient{}})

	_, err := registry.Get(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 0, registry.EvictIdle(time.Hour))
	assert.Equal(t, 1, registry.Len())
}
