package chat

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/llm"
	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/storage"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Actor owns one session's conversation state. All mutations are serialized
// through its mutex, so there is exactly one writer per session id.
type Actor struct {
	sessionID  string
	store      *storage.DB
	provider   llm.Provider
	node       *snowflake.Node
	logger     *slog.Logger
	genTimeout time.Duration

	mu            sync.Mutex
	messages      []storage.Message
	model         string
	processing    bool
	streaming     string
	lastTimestamp int64
	lastUsed      time.Time
}

// newActor builds an actor and recovers its durable state: the message log
// and the session's selected model.
func newActor(ctx context.Context, sessionID string, r *Registry) (*Actor, error) {
	messages, err := storage.GetMessagesBySessionID(ctx, r.store.DB(), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages for session %s: %w", sessionID, err)
	}

	model := r.defaultModel
	conv, err := storage.GetConversation(ctx, r.store.DB(), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation settings for session %s: %w", sessionID, err)
	}
	if conv != nil && conv.Model != "" {
		model = conv.Model
	}

	var lastTimestamp int64
	if n := len(messages); n > 0 {
		lastTimestamp = messages[n-1].Timestamp
	}

	return &Actor{
		sessionID:     sessionID,
		store:         r.store,
		provider:      r.provider,
		node:          r.node,
		logger:        r.logger.With("session_id", sessionID),
		genTimeout:    r.genTimeout,
		messages:      messages,
		model:         model,
		lastTimestamp: lastTimestamp,
		lastUsed:      time.Now(),
	}, nil
}

// SessionID returns the actor's session identity.
func (a *Actor) SessionID() string {
	return a.sessionID
}

// SendMessage appends the user message, runs a generation against the
// effective history, and commits the assistant reply. When req.OnChunk is
// set, incremental output is forwarded in exact generation order before the
// commit. Generation failures are converted into a synthetic assistant
// message; only precondition violations and storage failures surface as
// errors.
func (a *Actor) SendMessage(ctx context.Context, req SendRequest) (*ConversationState, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	a.mu.Lock()
	a.lastUsed = time.Now()
	if a.processing {
		a.mu.Unlock()
		return nil, ErrAlreadyProcessing
	}

	if req.Model != "" && req.Model != a.model {
		if err := a.setModelLocked(ctx, req.Model); err != nil {
			a.mu.Unlock()
			return nil, err
		}
	}

	userMsg := storage.Message{
		ID:        a.node.Generate().String(),
		SessionID: a.sessionID,
		Role:      RoleUser,
		Content:   content,
		Timestamp: a.nextTimestampLocked(),
	}
	if req.ThreadID != "" {
		threadID := req.ThreadID
		userMsg.ThreadID = &threadID
	}

	// The user message becomes visible to concurrent readers before the
	// model responds.
	if err := a.appendLocked(ctx, &userMsg); err != nil {
		a.mu.Unlock()
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	history := a.effectiveHistoryLocked(req.ThreadID)
	model := a.model
	a.processing = true
	a.streaming = ""
	a.mu.Unlock()

	result, genErr := a.generate(ctx, model, history, req.OnChunk)

	// Commit phase. The request context may already be expired (deadline or
	// client gone); the state transition back to Idle must still be durable.
	commitCtx := context.WithoutCancel(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.processing = false
	a.streaming = ""

	assistantMsg := storage.Message{
		ID:        a.node.Generate().String(),
		SessionID: a.sessionID,
		Role:      RoleAssistant,
		Timestamp: a.nextTimestampLocked(),
	}
	if req.ThreadID != "" {
		threadID := req.ThreadID
		assistantMsg.ThreadID = &threadID
	}

	if genErr != nil {
		a.logger.Error("generation failed", "model", model, "error", genErr)
		assistantMsg.Content = errorReplyText
	} else {
		assistantMsg.Content = result.content
		assistantMsg.ToolCalls = result.toolCalls
	}

	if err := a.appendLocked(commitCtx, &assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to commit assistant message: %w", err)
	}

	return a.snapshotLocked(), nil
}

// GetState returns a consistent snapshot of the conversation. Safe to call
// concurrently with an in-flight send.
func (a *Actor) GetState() *ConversationState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastUsed = time.Now()
	return a.snapshotLocked()
}

// Clear wipes the message log. The selected model is kept. Idempotent.
func (a *Actor) Clear(ctx context.Context) (*ConversationState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastUsed = time.Now()

	if _, err := storage.DeleteMessagesBySessionID(ctx, a.store.DB(), a.sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear messages: %w", err)
	}
	a.messages = nil
	return a.snapshotLocked(), nil
}

// SetModel switches the session's model. History is untouched; an in-flight
// generation keeps the model it started with.
func (a *Actor) SetModel(ctx context.Context, model string) (*ConversationState, error) {
	if strings.TrimSpace(model) == "" {
		return nil, ErrEmptyModel
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastUsed = time.Now()

	if err := a.setModelLocked(ctx, model); err != nil {
		return nil, err
	}
	return a.snapshotLocked(), nil
}

func (a *Actor) setModelLocked(ctx context.Context, model string) error {
	conv := &storage.Conversation{SessionID: a.sessionID, Model: model}
	if err := storage.UpsertConversation(ctx, a.store.DB(), conv); err != nil {
		return fmt.Errorf("failed to persist model selection: %w", err)
	}
	a.model = model
	return nil
}

// appendLocked durably appends a message and, for threaded messages, bumps
// the thread-root reply counter in the same transaction. The in-memory
// replica is only updated after the write commits.
func (a *Actor) appendLocked(ctx context.Context, msg *storage.Message) error {
	if msg.ThreadID == nil {
		if err := storage.InsertMessage(ctx, a.store.DB(), msg); err != nil {
			return err
		}
	} else {
		err := a.store.WithTx(ctx, func(tx *sql.Tx) error {
			if err := storage.InsertMessage(ctx, tx, msg); err != nil {
				return err
			}
			return storage.BumpThreadRoot(ctx, tx, a.sessionID, *msg.ThreadID, msg.Timestamp)
		})
		if err != nil {
			return err
		}
	}

	a.messages = append(a.messages, *msg)
	if msg.ThreadID != nil {
		for i := range a.messages {
			if a.messages[i].ID == *msg.ThreadID {
				a.messages[i].ReplyCount++
				a.messages[i].LastReplyTimestamp = msg.Timestamp
				break
			}
		}
	}
	return nil
}

// effectiveHistoryLocked builds the history handed to the model. Threads are
// isolated: a threaded send sees the root plus that thread's replies, a
// main-channel send sees only top-level messages.
func (a *Actor) effectiveHistoryLocked(threadID string) []*llm.Message {
	history := make([]*llm.Message, 0, len(a.messages))
	for i := range a.messages {
		m := &a.messages[i]
		if threadID != "" {
			if m.ID != threadID && (m.ThreadID == nil || *m.ThreadID != threadID) {
				continue
			}
		} else if m.ThreadID != nil {
			continue
		}
		history = append(history, &llm.Message{
			Role:      m.Role,
			Content:   m.Content,
			ToolCalls: toWireToolCalls(m.ToolCalls),
		})
	}
	return history
}

func (a *Actor) snapshotLocked() *ConversationState {
	messages := make([]storage.Message, len(a.messages))
	copy(messages, a.messages)
	return &ConversationState{
		SessionID:        a.sessionID,
		Messages:         messages,
		Model:            a.model,
		IsProcessing:     a.processing,
		StreamingMessage: a.streaming,
	}
}

// nextTimestampLocked returns a millisecond timestamp that never decreases
// within the session, even for appends landing in the same millisecond.
func (a *Actor) nextTimestampLocked() int64 {
	ts := time.Now().UnixMilli()
	if ts <= a.lastTimestamp {
		ts = a.lastTimestamp + 1
	}
	a.lastTimestamp = ts
	return ts
}

// idleSince reports whether the actor has been untouched for at least d and
// has no generation in flight.
func (a *Actor) idleSince(d time.Duration) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.processing && time.Since(a.lastUsed) >= d
}

type genResult struct {
	content   string
	toolCalls storage.ToolCallList
}

// generate runs one model call against the effective history. With a chunk
// callback it streams, appending each delta to the transient streaming buffer
// before forwarding it, in arrival order.
func (a *Actor) generate(ctx context.Context, model string, history []*llm.Message, onChunk ChunkFunc) (*genResult, error) {
	genCtx := ctx
	if a.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, a.genTimeout)
		defer cancel()
	}

	client, err := a.provider.Model(genCtx, model)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model %s: %w", model, err)
	}

	req := &llm.ChatCompletionRequest{Model: model, Messages: history}

	if onChunk == nil {
		resp, err := client.CreateChatCompletion(genCtx, req)
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("model %s returned no choices", model)
		}
		choice := resp.Choices[0]
		return &genResult{
			content:   choice.Message.Content,
			toolCalls: toStoredToolCalls(choice.Message.ToolCalls),
		}, nil
	}

	stream, err := client.CreateChatCompletionStream(genCtx, req)
	if err != nil {
		return nil, err
	}

	var agg llm.StreamAggregator
	err = llm.StreamToCallback(stream, func(chunk *llm.StreamChunk) error {
		agg.AddChunk(chunk)
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
			return nil
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			return nil
		}
		a.mu.Lock()
		a.streaming += delta
		a.mu.Unlock()
		onChunk(delta)
		return nil
	})
	if err != nil {
		return nil, err
	}

	final := agg.Response().Choices[0]
	return &genResult{
		content:   final.Message.Content,
		toolCalls: toStoredToolCalls(final.Message.ToolCalls),
	}, nil
}

// toStoredToolCalls flattens wire tool calls into the durable record shape.
func toStoredToolCalls(calls []llm.ToolCall) storage.ToolCallList {
	if len(calls) == 0 {
		return nil
	}
	stored := make(storage.ToolCallList, 0, len(calls))
	for _, call := range calls {
		stored = append(stored, storage.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return stored
}

// toWireToolCalls rebuilds wire tool calls from durable records.
func toWireToolCalls(calls storage.ToolCallList) []llm.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	wire := make([]llm.ToolCall, 0, len(calls))
	for _, call := range calls {
		wire = append(wire, llm.ToolCall{
			ID:   call.ID,
			Type: "function",
			Function: llm.FunctionCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return wire
}
