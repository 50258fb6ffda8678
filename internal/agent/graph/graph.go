package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/nodes"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/observers"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/llm"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/metrics"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/planner"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/query"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

// Runner executes one planning run end to end.
type Runner interface {
	Invoke(ctx context.Context, in model.PlanInput) (*model.Outcome, error)
}

// Config holds everything needed to compose the planning graph end-to-end.
type Config struct {
	ChatModels *llm.ChatModels
	Search     model.SearchProvider
	Metrics    *metrics.Metrics
	// Verbose attaches the logging observers to every run.
	Verbose bool
}

// GraphBuilder handles the construction of the planning graph
type GraphBuilder struct {
	deps  *nodes.Deps
	graph *compose.Graph[model.PlanInput, *model.Outcome]
}

type graphRunner struct {
	runnable compose.Runnable[model.PlanInput, *model.Outcome]
	verbose  bool
}

func (r *graphRunner) Invoke(ctx context.Context, in model.PlanInput) (*model.Outcome, error) {
	var opts []compose.Option
	if r.verbose {
		opts = append(opts, compose.WithCallbacks(observers.NewAllCallbacks()))
	}
	out, err := r.runnable.Invoke(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("planning graph returned no outcome")
	}
	return out, nil
}

// BuildPlanGraph wires the components into the graph and returns a Runner. Missing chat
// models are allowed: every LLM step then takes its deterministic fallback.
func BuildPlanGraph(ctx context.Context, cfg Config) (Runner, error) {
	deps := &nodes.Deps{Search: cfg.Search, Metrics: cfg.Metrics}
	var queryModel, planModel *llm.Invoker
	if cfg.ChatModels != nil {
		queryModel = cfg.ChatModels.Query
		deps.Extract = cfg.ChatModels.Extract
		planModel = cfg.ChatModels.Plan
	}
	deps.Queries = query.NewGenerator(queryModel)
	deps.Composer = planner.NewComposer(planModel)

	runnable, err := BuildGraph(ctx, deps)
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Planning graph built successfully")
	return &graphRunner{runnable: runnable, verbose: cfg.Verbose}, nil
}

// BuildGraph constructs and returns the compiled planning graph
func BuildGraph(ctx context.Context, deps *nodes.Deps) (compose.Runnable[model.PlanInput, *model.Outcome], error) {
	if deps == nil {
		return nil, fmt.Errorf("graph deps are nil")
	}
	if deps.Queries == nil || deps.Composer == nil {
		return nil, fmt.Errorf("query generator and plan composer are required")
	}
	if deps.Search == nil {
		return nil, fmt.Errorf("search provider is nil")
	}

	builder := &GraphBuilder{
		deps: deps,
		graph: compose.NewGraph[model.PlanInput, *model.Outcome](
			compose.WithGenLocalState(func(ctx context.Context) *model.PlanState {
				return &model.PlanState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	if err := b.graph.AddLambdaNode(nodes.NodeInit,
		nodes.NewInitNode(),
		compose.WithStatePreHandler(nodes.NewInitPreHandler()),
	); err != nil {
		return fmt.Errorf("add %s node: %w", nodes.NodeInit, err)
	}
	if err := b.graph.AddLambdaNode(nodes.NodeSearch, nodes.NewSearchNode(b.deps)); err != nil {
		return fmt.Errorf("add %s node: %w", nodes.NodeSearch, err)
	}
	if err := b.graph.AddLambdaNode(nodes.NodeExtract, nodes.NewExtractNode(b.deps)); err != nil {
		return fmt.Errorf("add %s node: %w", nodes.NodeExtract, err)
	}
	if err := b.graph.AddLambdaNode(nodes.NodePlan, nodes.NewPlanNode(b.deps)); err != nil {
		return fmt.Errorf("add %s node: %w", nodes.NodePlan, err)
	}
	return nil
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInit},
		{nodes.NodeInit, nodes.NodeSearch},
		{nodes.NodeSearch, nodes.NodeExtract},
		{nodes.NodePlan, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches creates the quality gate branch
func (b *GraphBuilder) addBranches() error {
	gate := compose.NewGraphBranch(
		nodes.NewGateCondition(),
		map[string]bool{
			nodes.NodeSearch: true,
			nodes.NodePlan:   true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeExtract, gate); err != nil {
		logx.Error().Err(err).Msg("Error adding quality gate branch")
		return fmt.Errorf("error adding quality gate branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.PlanInput, *model.Outcome], error) {
	// Options are clamped to MaxRoundsLimit, so this bound is never hit by a healthy run.
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("travel_planner"),
		compose.WithMaxRunSteps(nodes.MaxSteps(nodes.MaxRoundsLimit)),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
