package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/bkellam/autochatter/internal/core"
	"github.com/bkellam/autochatter/internal/llm"
)

const llmSystemPrompt = "You write a single short, friendly YouTube comment " +
	"reacting to a video title. One or two sentences, no hashtags, no quotes " +
	"around the comment."

// LLMComposer generates comment text from the video title. Any failure falls
// back to the template list so one flaky LLM call never costs an action.
type LLMComposer struct {
	client      llm.Client
	model       string
	temperature float64
	maxTokens   int
	fallback    *TemplateComposer
}

func NewLLMComposer(client llm.Client, model string, temperature float64, maxTokens int, fallback *TemplateComposer) *LLMComposer {
	if maxTokens <= 0 {
		maxTokens = 120
	}
	return &LLMComposer{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		fallback:    fallback,
	}
}

func (c *LLMComposer) ChooseText(ctx context.Context, video core.Video) (string, error) {
	response, err := c.client.ChatCompletion(ctx, llm.ChatRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: llmSystemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf("Video title: %s", video.Title)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err == nil {
		if text := strings.TrimSpace(response.Content); text != "" {
			return text, nil
		}
		err = fmt.Errorf("empty completion")
	}
	core.LoggerFromContext(ctx).Warn("llm comment generation failed, using template",
		"video_id", video.ID, "error", err)
	return c.fallback.ChooseText(ctx, video)
}

func (c *LLMComposer) PromoFragment() string {
	return c.fallback.PromoFragment()
}
