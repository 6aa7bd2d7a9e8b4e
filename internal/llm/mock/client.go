package mock

import (
	"context"

	"github.com/bkellam/autochatter/internal/llm"
)

// Client is a scripted llm.Client for tests.
type Client struct {
	Response string
	Err      error
	Requests []llm.ChatRequest
}

func (c *Client) ChatCompletion(_ context.Context, request llm.ChatRequest) (llm.ChatResponse, error) {
	c.Requests = append(c.Requests, request)
	if c.Err != nil {
		return llm.ChatResponse{}, c.Err
	}
	return llm.ChatResponse{Content: c.Response}, nil
}
