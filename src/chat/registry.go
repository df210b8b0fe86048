package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/llm"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/storage"
)

// RegistryConfig configures a session registry.
type RegistryConfig struct {
	Store        *storage.DB
	Provider     llm.Provider
	Logger       *slog.Logger
	DefaultModel string
	// GenerationTimeout bounds one model call; expiry takes the failure path
	// so the actor cannot stay in Generating forever. Zero disables it.
	GenerationTimeout time.Duration
	// NodeID seeds the snowflake generator for message ids (0-1023).
	NodeID int64
}

// Registry owns the map from session id to its actor. Actors are created on
// first use, recovering durable state, and evicted explicitly or by idle
// sweep; eviction only drops the in-memory replica.
type Registry struct {
	store        *storage.DB
	provider     llm.Provider
	logger       *slog.Logger
	node         *snowflake.Node
	defaultModel string
	genTimeout   time.Duration

	mu     sync.Mutex
	actors map[string]*Actor
}

// NewRegistry creates a session registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	defaultModel := cfg.DefaultModel
	if defaultModel == "" {
		defaultModel = DefaultModel
	}

	return &Registry{
		store:        cfg.Store,
		provider:     cfg.Provider,
		logger:       logger.With("component", "session_registry"),
		node:         node,
		defaultModel: defaultModel,
		genTimeout:   cfg.GenerationTimeout,
		actors:       make(map[string]*Actor),
	}, nil
}

// Get returns the actor for a session id, creating it on first use.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if actor, ok := r.actors[sessionID]; ok {
		return actor, nil
	}

	actor, err := newActor(ctx, sessionID, r)
	if err != nil {
		return nil, err
	}
	r.actors[sessionID] = actor
	r.logger.Debug("session actor created", "session_id", sessionID, "active", len(r.actors))
	return actor, nil
}

// Evict drops a session's actor from the registry. The durable state is
// untouched; a later Get rebuilds the actor from storage.
func (r *Registry) Evict(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actors[sessionID]; !ok {
		return false
	}
	delete(r.actors, sessionID)
	return true
}

// EvictIdle drops actors that have been idle for at least olderThan and have
// no generation in flight. Returns the number evicted.
func (r *Registry) EvictIdle(olderThan time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, actor := range r.actors {
		if actor.idleSince(olderThan) {
			delete(r.actors, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("idle session actors evicted", "count", evicted, "active", len(r.actors))
	}
	return evicted
}

// Len returns the number of resident actors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actors)
}
