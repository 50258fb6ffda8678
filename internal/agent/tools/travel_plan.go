package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/service"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

const ToolGenerateTravelPlan = "generate_travel_plan"

// PlanGenerator is the part of the planning service the tool needs.
type PlanGenerator interface {
	Generate(ctx context.Context, req service.Request) *model.Outcome
}

// ===================================
// Generate Travel Plan Tool
// ===================================

// NewTravelPlanTool exposes the planner to chat agents. The tool never fails on a
// planning problem; failures come back inside the JSON outcome.
func NewTravelPlanTool(gen PlanGenerator) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGenerateTravelPlan,
			Desc: "Research a destination on the web and compose a day-by-day travel itinerary. Use this tool when the user asks for a trip plan, a route for several days, or what to do in a city. Returns a JSON outcome with the plan, or a partial result with the facts that were found.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"destination": {
					Type:     schema.String,
					Desc:     "City or region to visit, e.g. Rivertown, Kyoto, Lisbon.",
					Required: true,
				},
				"days": {
					Type:     schema.Integer,
					Desc:     "Number of travel days (1-30).",
					Required: true,
				},
				"origin": {
					Type: schema.String,
					Desc: "Where the traveller departs from.",
				},
				"date_range": {
					Type: schema.String,
					Desc: "Travel dates as free text, e.g. 2026-05-01 to 2026-05-03.",
				},
				"group_type": {
					Type: schema.String,
					Desc: "Who is travelling: solo, couple, family, friends, elderly.",
				},
				"preferences": {
					Type:     schema.Array,
					Desc:     "Interests such as food, history, photography, nature.",
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
				},
				"budget": {
					Type: schema.String,
					Desc: "Budget level or amount as free text.",
				},
				"max_rounds": {
					Type: schema.Integer,
					Desc: "Research rounds before planning (default 2, max 5).",
				},
				"quality_level": {
					Type: schema.String,
					Desc: "fast, normal or high. Higher levels read more notes and use more tokens.",
					Enum: []string{"fast", "normal", "high"},
				},
				"include_weather": {
					Type: schema.Boolean,
					Desc: "Attach a weather forecast when available.",
				},
				"skip_map": {
					Type: schema.Boolean,
					Desc: "Skip map-based route validation.",
				},
				"session_id": {
					Type: schema.String,
					Desc: "Conversation session id; plans are stored under it.",
				},
			}),
		},
		func(ctx context.Context, in *service.Request) (*model.Outcome, error) {
			if in == nil {
				return nil, fmt.Errorf("arguments are required")
			}
			return gen.Generate(ctx, *in), nil
		},
		utils.WithUnmarshalArguments(func(ctx context.Context, arguments string) (any, error) {
			req, err := DecodeArguments(arguments)
			if err != nil {
				logx.Warn().Err(err).Str("tool", ToolGenerateTravelPlan).Str("arguments", arguments).Msg("invalid tool arguments")
				return nil, err
			}
			return req, nil
		}),
	)
}

// DecodeArguments parses model-written arguments leniently: numbers may arrive as strings,
// booleans as "true"/"false", and preferences as one comma-separated string.
func DecodeArguments(arguments string) (*service.Request, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		return nil, fmt.Errorf("decode %s arguments: %w", ToolGenerateTravelPlan, err)
	}

	req := &service.Request{
		Destination:    text(m["destination"]),
		Days:           integer(m["days"]),
		Origin:         text(m["origin"]),
		DateRange:      text(m["date_range"]),
		GroupType:      text(m["group_type"]),
		Preferences:    list(m["preferences"]),
		Budget:         text(m["budget"]),
		MaxRounds:      integer(m["max_rounds"]),
		QualityLevel:   text(m["quality_level"]),
		IncludeWeather: boolean(m["include_weather"]),
		SkipMap:        boolean(m["skip_map"]),
		SessionID:      text(m["session_id"]),
	}
	return req, nil
}

func text(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(vv)
	default:
		// coerce non-string to string
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func integer(v any) int {
	switch vv := v.(type) {
	case float64:
		// JSON numbers decode as float64
		return int(vv)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
			return n
		}
	}
	return 0
}

func boolean(v any) bool {
	switch vv := v.(type) {
	case bool:
		return vv
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(vv))
		return b
	}
	return false
}

func list(v any) []string {
	switch vv := v.(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(vv, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// GetToolInfos returns the ToolInfo of every tool, e.g. to bind them to a chat model.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Run invokes t outside a graph with handlers attached, emitting the same tool lifecycle
// callbacks a ToolsNode would.
func Run(ctx context.Context, t tool.InvokableTool, arguments string, handlers ...callbacks.Handler) (string, error) {
	if len(handlers) > 0 {
		name := ""
		if info, err := t.Info(ctx); err == nil && info != nil {
			name = info.Name
		}
		ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
			Name:      name,
			Component: components.ComponentOfTool,
		}, handlers...)
	}

	ctx = callbacks.OnStart(ctx, &tool.CallbackInput{ArgumentsInJSON: arguments})
	out, err := t.InvokableRun(ctx, arguments)
	if err != nil {
		callbacks.OnError(ctx, err)
		return "", err
	}
	callbacks.OnEnd(ctx, &tool.CallbackOutput{Response: out})
	return out, nil
}
