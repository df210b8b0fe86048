package llm

import (
	"errors"
	"io"
	"strings"
)

// StreamCallback is called for each chunk in a stream.
type StreamCallback func(chunk *StreamChunk) error

// StreamToCallback reads a stream to completion, invoking the callback for
// each chunk in arrival order.
func StreamToCallback(stream StreamInterface, callback StreamCallback) error {
	defer stream.Close()

	for {
		chunk, err := stream.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if chunk == nil {
			return nil
		}
		if err := callback(chunk); err != nil {
			return err
		}
	}
}

// CollectStreamContent reads a stream and concatenates all delta content.
func CollectStreamContent(stream StreamInterface) (string, error) {
	var content strings.Builder

	err := StreamToCallback(stream, func(chunk *StreamChunk) error {
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta != nil {
			content.WriteString(chunk.Choices[0].Delta.Content)
		}
		return nil
	})

	return content.String(), err
}

// StreamAggregator accumulates streaming deltas into a final response,
// merging partial tool-call fragments by index as they arrive.
type StreamAggregator struct {
	id           string
	model        string
	created      int64
	content      strings.Builder
	toolCalls    []ToolCall
	finishReason string
}

// AddChunk folds one chunk into the aggregate.
func (a *StreamAggregator) AddChunk(chunk *StreamChunk) {
	if chunk == nil {
		return
	}
	if a.id == "" {
		a.id = chunk.ID
		a.model = chunk.Model
		a.created = chunk.Created
	}
	for _, choice := range chunk.Choices {
		if choice.FinishReason != "" {
			a.finishReason = choice.FinishReason
		}
		if choice.Delta == nil {
			continue
		}
		a.content.WriteString(choice.Delta.Content)
		for _, tc := range choice.Delta.ToolCalls {
			a.addToolCall(tc)
		}
	}
}

func (a *StreamAggregator) addToolCall(tc ToolCall) {
	// Providers stream a call's arguments across several chunks that share
	// the call id; fragments with an empty id extend the latest call.
	if tc.ID != "" {
		for i := range a.toolCalls {
			if a.toolCalls[i].ID == tc.ID {
				a.toolCalls[i].Function.Arguments = append(a.toolCalls[i].Function.Arguments, tc.Function.Arguments...)
				return
			}
		}
		a.toolCalls = append(a.toolCalls, tc)
		return
	}
	if n := len(a.toolCalls); n > 0 {
		a.toolCalls[n-1].Function.Arguments = append(a.toolCalls[n-1].Function.Arguments, tc.Function.Arguments...)
	}
}

// Content returns the accumulated text so far.
func (a *StreamAggregator) Content() string {
	return a.content.String()
}

// Response builds the final non-streaming-shaped response.
func (a *StreamAggregator) Response() *ChatCompletionResponse {
	msg := Message{
		Role:      "assistant",
		Content:   a.content.String(),
		ToolCalls: a.toolCalls,
	}
	return &ChatCompletionResponse{
		ID:      a.id,
		Object:  "chat.completion",
		Created: a.created,
		Model:   a.model,
		Choices: []Choice{{Message: msg, FinishReason: a.finishReason}},
	}
}
