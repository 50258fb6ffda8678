package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/llm"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/metrics"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/repo"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/search"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/service"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/tools"
	"github.com/Wayfarer-core-poc-v1/server/internal/api"
	"github.com/Wayfarer-core-poc-v1/server/internal/core"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
	pkgredis "github.com/Wayfarer-core-poc-v1/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the planning service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Verbose     bool   `envconfig:"GRAPH_VERBOSE" default:"false"`

	// Infrastructure
	Redis  pkgredis.Config
	Server model.ServerConfig
	Store  model.StoreConfig
	Search model.SearchConfig

	// LLM provider and models
	Provider model.ProviderConfig
	Query    model.QueryModelConfig
	Extract  model.ExtractModelConfig
	Plan     model.PlanModelConfig

	Planner model.PlannerConfig
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis successfully")

	provider, err := search.New(cfg.Search, &http.Client{Timeout: cfg.Search.Timeout})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create search provider")
	}

	chatModels, err := llm.NewChatModels(ctx, llm.ChatModelConfig{
		Provider: cfg.Provider,
		Query:    cfg.Query.Spec(),
		Extract:  cfg.Extract.Spec(),
		Plan:     cfg.Plan.Spec(),
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create chat models")
	}

	m := metrics.New()
	runner, err := graph.BuildPlanGraph(ctx, graph.Config{
		ChatModels: chatModels,
		Search:     search.NewCached(provider, rdb, cfg.Search.CacheTTL),
		Metrics:    m,
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build planning graph")
	}

	planner := service.NewPlanner(runner, repo.NewRedisPlanRepository(rdb, cfg.Store.TTL), m, cfg.Planner)
	controller := api.NewPlanController(planner, tools.NewTravelPlanTool(planner))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(controller, m.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logx.Info().Str("addr", srv.Addr).Str("env", env.String()).Msg("Travel planner listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
