package llmclient

import (
	"context"

	"github.com/mikeschlottig/nexus-slacker-ai-agent-collaboration-platform/src/llm"
)

var _ llm.ModelClient = (*ModelClient)(nil)

// ModelClient is a client bound to a specific model id.
type ModelClient struct {
	client *Client
	model  *llm.ModelInfo
}

// Model returns a ModelClient bound to the named model. The model id is not
// validated against a catalog; an unknown id fails at request time.
func (c *Client) Model(ctx context.Context, modelName string) (llm.ModelClient, error) {
	if c.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return &ModelClient{
		client: c,
		model:  &llm.ModelInfo{ID: modelName},
	}, nil
}

// CreateChatCompletion runs a non-streaming completion with the bound model.
func (mc *ModelClient) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	req.Model = mc.model.ID
	return mc.client.createChatCompletion(ctx, req)
}

// CreateChatCompletionStream runs a streaming completion with the bound model.
func (mc *ModelClient) CreateChatCompletionStream(ctx context.Context, req *llm.ChatCompletionRequest) (llm.StreamInterface, error) {
	req.Model = mc.model.ID
	return mc.client.createChatCompletionStream(ctx, req)
}

// GetModelInfo returns the bound model's info.
func (mc *ModelClient) GetModelInfo() *llm.ModelInfo {
	return mc.model
}
