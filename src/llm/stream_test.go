package llm

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceStream struct {
	chunks []*StreamChunk
	pos    int
	closed bool
}

func (s *sliceStream) Read() (*StreamChunk, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

func textChunk(content string) *StreamChunk {
	return &StreamChunk{Choices: []Choice{{Delta: &Message{Content: content}}}}
}

func TestStreamToCallbackClosesStream(t *testing.T) {
	stream := &sliceStream{chunks: []*StreamChunk{textChunk("a"), textChunk("b")}}

	var seen []string
	err := StreamToCallback(stream, func(chunk *StreamChunk) error {
		seen = append(seen, chunk.Choices[0].Delta.Content)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.True(t, stream.closed)
}

func TestStreamToCallbackPropagatesCallbackError(t *testing.T) {
	stream := &sliceStream{chunks: []*StreamChunk{textChunk("a")}}
	wantErr := errors.New("boom")

	err := StreamToCallback(stream, func(chunk *StreamChunk) error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
	assert.True(t, stream.closed)
}

func TestCollectStreamContent(t *testing.T) {
	stream := &sliceStream{chunks: []*StreamChunk{textChunk("Hel"), textChunk("lo")}}

	content, err := CollectStreamContent(stream)
	require.NoError(t, err)
	assert.Equal(t, "Hello", content)
}

func TestStreamAggregatorContent(t *testing.T) {
	var agg StreamAggregator
	agg.AddChunk(&StreamChunk{ID: "c1", Model: "m", Choices: []Choice{{Delta: &Message{Content: "Hel"}}}})
	agg.AddChunk(textChunk("lo"))
	agg.AddChunk(&StreamChunk{Choices: []Choice{{FinishReason: "stop"}}})

	assert.Equal(t, "Hello", agg.Content())

	resp := agg.Response()
	assert.Equal(t, "c1", resp.ID)
	assert.Equal(t, "m", resp.Model)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Hello", resp.Choices[0].Message.Content)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
}

func TestStreamAggregatorMergesToolCallFragments(t *testing.T) {
	var agg StreamAggregator

	agg.AddChunk(&StreamChunk{Choices: []Choice{{Delta: &Message{ToolCalls: []ToolCall{{
		ID:       "call-1",
		Type:     "function",
		Function: FunctionCall{Name: "lookup", Arguments: json.RawMessage(`{"q":`)},
	}}}}}})
	agg.AddChunk(&StreamChunk{Choices: []Choice{{Delta: &Message{ToolCalls: []ToolCall{{
		Function: FunctionCall{Arguments: json.RawMessage(`"x"}`)},
	}}}}}})

	resp := agg.Response()
	calls := resp.Choices[0].Message.ToolCalls
	require.Len(t, calls, 1)
	assert.Equal(t, "call-1", calls[0].ID)
	assert.Equal(t, "lookup", calls[0].Function.Name)
	assert.JSONEq(t, `{"q":"x"}`, string(calls[0].Function.Arguments))
}
