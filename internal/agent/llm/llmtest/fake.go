// Package llmtest provides a scripted chat model for tests.
package llmtest

import (
	"context"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel answers from Respond when set, otherwise from Responses in order (the last
// one repeats). Err, when set, fails every call.
type ChatModel struct {
	Responses []string
	Respond   func(msgs []*schema.Message) (string, error)
	Err       error
	Usage     *schema.TokenUsage

	mu    sync.Mutex
	calls [][]*schema.Message
}

var _ einomodel.BaseChatModel = (*ChatModel)(nil)

func (f *ChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, input)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	var content string
	switch {
	case f.Respond != nil:
		out, err := f.Respond(input)
		if err != nil {
			return nil, err
		}
		content = out
	case len(f.Responses) > 0:
		if idx >= len(f.Responses) {
			idx = len(f.Responses) - 1
		}
		content = f.Responses[idx]
	}

	msg := schema.AssistantMessage(content, nil)
	if f.Usage != nil {
		usage := *f.Usage
		msg.ResponseMeta = &schema.ResponseMeta{Usage: &usage}
	}
	return msg, nil
}

func (f *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Calls returns how many times the model was invoked.
func (f *ChatModel) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Call returns the messages of the i-th invocation.
func (f *ChatModel) Call(i int) []*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}
