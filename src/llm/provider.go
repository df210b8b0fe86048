package llm

import (
	"context"
	"io"
)

// Provider hands out clients bound to a specific model.
type Provider interface {
	Model(ctx context.Context, modelName string) (ModelClient, error)
}

// ModelClient runs completions against one model.
type ModelClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest) (StreamInterface, error)
	GetModelInfo() *ModelInfo
}

// StreamInterface reads chunks from a streaming completion. Read returns
// io.EOF (or a nil chunk) when the stream ends.
type StreamInterface interface {
	Read() (*StreamChunk, error)
	io.Closer
}
