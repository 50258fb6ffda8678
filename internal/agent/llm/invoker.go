package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/budget"
	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
)

// ErrEmptyCompletion is returned when the model answered with no content.
var ErrEmptyCompletion = errors.New("llm returned empty content")

// Completion is the result of one model call.
type Completion struct {
	Content   string
	Model     string
	Usage     schema.TokenUsage
	Estimated bool // usage was estimated locally because the provider reported none
}

// Tokens returns the total tokens of the call.
func (c Completion) Tokens() int {
	if c.Usage.TotalTokens > 0 {
		return c.Usage.TotalTokens
	}
	return c.Usage.PromptTokens + c.Usage.CompletionTokens
}

// Invoker is the LLM capability handed to each component. A nil Invoker is valid and
// always fails, which lets components take their fallback branch.
type Invoker struct {
	chat  einomodel.BaseChatModel
	model string
	name  string
}

// NewInvoker wraps a chat model. name labels callbacks and logs (e.g. "extract").
func NewInvoker(chat einomodel.BaseChatModel, modelName, name string) *Invoker {
	return &Invoker{chat: chat, model: modelName, name: name}
}

// ModelName returns the configured model id.
func (i *Invoker) ModelName() string {
	if i == nil {
		return ""
	}
	return i.model
}

// Invoke runs one blocking request/response call.
func (i *Invoker) Invoke(ctx context.Context, msgs []*schema.Message) (Completion, error) {
	if i == nil || i.chat == nil {
		return Completion{}, errx.ErrNotConfigured
	}

	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      i.name,
		Type:      i.model,
		Component: components.ComponentOfChatModel,
	})

	out, err := i.chat.Generate(ctx, msgs)
	if err != nil {
		return Completion{}, errx.WrapUpstream(fmt.Errorf("%s model: %w", i.name, err))
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return Completion{}, ErrEmptyCompletion
	}

	c := Completion{Content: out.Content, Model: i.model}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		c.Usage = *out.ResponseMeta.Usage
	}
	if c.Tokens() == 0 {
		c.Usage.PromptTokens = budget.CountMessages(msgs)
		c.Usage.CompletionTokens = budget.EstimateTokens(out.Content)
		c.Usage.TotalTokens = c.Usage.PromptTokens + c.Usage.CompletionTokens
		c.Estimated = true
	}
	return c, nil
}
