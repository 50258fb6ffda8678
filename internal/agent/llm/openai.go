package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat endpoint.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// OpenAIChatModel adapts go-openai to eino's BaseChatModel.
type OpenAIChatModel struct {
	client *openai.Client
	cfg    OpenAIConfig
}

var _ einomodel.BaseChatModel = (*OpenAIChatModel)(nil)

func NewOpenAIChatModel(cfg OpenAIConfig) *OpenAIChatModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIChatModel{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}
}

// IsCallbacksEnabled tells eino this component emits its own callbacks.
func (m *OpenAIChatModel) IsCallbacksEnabled() bool {
	return true
}

func (m *OpenAIChatModel) GetType() string {
	return "OpenAI"
}

func (m *OpenAIChatModel) Generate(ctx context.Context, in []*schema.Message, _ ...einomodel.Option) (out *schema.Message, err error) {
	ctx = callbacks.OnStart(ctx, &einomodel.CallbackInput{Messages: in})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	req := openai.ChatCompletionRequest{
		Model:       m.cfg.Model,
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(in)),
	}
	for _, msg := range in {
		if msg == nil {
			continue
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion: no choices")
	}

	out = schema.AssistantMessage(resp.Choices[0].Message.Content, nil)
	out.ResponseMeta = &schema.ResponseMeta{
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	callbacks.OnEnd(ctx, &einomodel.CallbackOutput{
		Message: out,
		TokenUsage: &einomodel.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	})
	return out, nil
}

// Stream is served from a single Generate call; the planning loop never streams.
func (m *OpenAIChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

func toOpenAIRole(r schema.RoleType) string {
	switch r {
	case schema.System:
		return openai.ChatMessageRoleSystem
	case schema.Assistant:
		return openai.ChatMessageRoleAssistant
	case schema.Tool:
		return openai.ChatMessageRoleTool
	default:
		return openai.ChatMessageRoleUser
	}
}
