package model

import "time"

// ================ Config ================
type ProviderConfig struct {
	Name          string `envconfig:"LLM_PROVIDER" default:"gemini"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
}

type QueryModelConfig struct {
	Model       string  `envconfig:"QUERY_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"QUERY_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"QUERY_TEMPERATURE" default:"0.7"`
}

type ExtractModelConfig struct {
	Model       string  `envconfig:"EXTRACT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"EXTRACT_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"EXTRACT_TEMPERATURE" default:"0.1"`
}

type PlanModelConfig struct {
	Model       string  `envconfig:"PLAN_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"PLAN_MAX_TOKENS" default:"8192"`
	Temperature float32 `envconfig:"PLAN_TEMPERATURE" default:"0.4"`
}

// ModelSpec is the provider-neutral view of one of the model configs above.
type ModelSpec struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

func (c QueryModelConfig) Spec() ModelSpec   { return ModelSpec(c) }
func (c ExtractModelConfig) Spec() ModelSpec { return ModelSpec(c) }
func (c PlanModelConfig) Spec() ModelSpec    { return ModelSpec(c) }

type PlannerConfig struct {
	MaxRounds       int    `envconfig:"PLANNER_MAX_ROUNDS" default:"2"`
	QualityLevel    string `envconfig:"PLANNER_QUALITY_LEVEL" default:"normal"`
	ParallelSearch  bool   `envconfig:"PLANNER_PARALLEL_SEARCH" default:"false"`
	StrictBudget    bool   `envconfig:"PLANNER_STRICT_BUDGET" default:"false"`
	ResultsPerQuery int    `envconfig:"PLANNER_RESULTS_PER_QUERY" default:"10"`
}

type SearchConfig struct {
	Provider string        `envconfig:"SEARCH_PROVIDER" default:"serper"`
	APIKey   string        `envconfig:"SEARCH_API_KEY"`
	BaseURL  string        `envconfig:"SEARCH_BASE_URL"`
	Timeout  time.Duration `envconfig:"SEARCH_TIMEOUT" default:"15s"`
	CacheTTL time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"168h"`
}

type StoreConfig struct {
	TTL time.Duration `envconfig:"PLAN_STORE_TTL" default:"168h"`
}

type ServerConfig struct {
	Addr string `envconfig:"HTTP_ADDR" default:":8080"`
}
