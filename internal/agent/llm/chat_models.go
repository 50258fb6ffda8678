package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	Provider model.ProviderConfig
	Query    model.ModelSpec
	Extract  model.ModelSpec
	Plan     model.ModelSpec
}

// ChatModels holds one invoker per LLM call site of the planning loop.
type ChatModels struct {
	Query   *Invoker
	Extract *Invoker
	Plan    *Invoker
}

// NewChatModels creates the query, extraction and planning models for the configured provider.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	var build func(context.Context, model.ModelSpec) (einomodel.BaseChatModel, error)

	switch strings.ToLower(strings.TrimSpace(config.Provider.Name)) {
	case "", ProviderGemini:
		client, err := newGeminiClient(ctx, config.Provider)
		if err != nil {
			return nil, err
		}
		build = func(ctx context.Context, spec model.ModelSpec) (einomodel.BaseChatModel, error) {
			return newGeminiChatModel(ctx, client, spec)
		}
	case ProviderOpenAI:
		if config.Provider.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %q", ProviderOpenAI)
		}
		build = func(_ context.Context, spec model.ModelSpec) (einomodel.BaseChatModel, error) {
			return NewOpenAIChatModel(OpenAIConfig{
				APIKey:      config.Provider.OpenAIAPIKey,
				BaseURL:     config.Provider.OpenAIBaseURL,
				Model:       spec.Model,
				MaxTokens:   spec.MaxTokens,
				Temperature: spec.Temperature,
			}), nil
		}
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", config.Provider.Name)
	}

	queryModel, err := build(ctx, config.Query)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating query model")
		return nil, fmt.Errorf("error creating query model: %w", err)
	}
	extractModel, err := build(ctx, config.Extract)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating extract model")
		return nil, fmt.Errorf("error creating extract model: %w", err)
	}
	planModel, err := build(ctx, config.Plan)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating plan model")
		return nil, fmt.Errorf("error creating plan model: %w", err)
	}

	logx.Debug().
		Str("provider", config.Provider.Name).
		Str("query_model", config.Query.Model).
		Str("extract_model", config.Extract.Model).
		Str("plan_model", config.Plan.Model).
		Msg("Chat models ready")

	return &ChatModels{
		Query:   NewInvoker(queryModel, config.Query.Model, "query"),
		Extract: NewInvoker(extractModel, config.Extract.Model, "extract"),
		Plan:    NewInvoker(planModel, config.Plan.Model, "plan"),
	}, nil
}

func newGeminiClient(ctx context.Context, cfg model.ProviderConfig) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for provider %q", ProviderGemini)
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.GeminiBaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

func newGeminiChatModel(ctx context.Context, client *genai.Client, spec model.ModelSpec) (*gemini.ChatModel, error) {
	temperature := spec.Temperature
	maxTokens := spec.MaxTokens
	// JSON answers only; thoughts would end up in Content
	return gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       spec.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(1024)),
		},
	})
}
