package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/service"
)

type recordingGenerator struct {
	got service.Request
}

func (g *recordingGenerator) Generate(_ context.Context, req service.Request) *model.Outcome {
	g.got = req
	return &model.Outcome{Success: true, Destination: req.Destination, Days: req.Days}
}

func TestTravelPlanToolCoercesArguments(t *testing.T) {
	gen := &recordingGenerator{}
	tl := NewTravelPlanTool(gen)

	out, err := tl.InvokableRun(context.Background(),
		`{"destination": " Rivertown ", "days": "3", "preferences": "food, history", "include_weather": "true", "max_rounds": 2}`)
	require.NoError(t, err)

	assert.Equal(t, "Rivertown", gen.got.Destination)
	assert.Equal(t, 3, gen.got.Days)
	assert.Equal(t, []string{"food", "history"}, gen.got.Preferences)
	assert.True(t, gen.got.IncludeWeather)
	assert.Equal(t, 2, gen.got.MaxRounds)

	var outcome model.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.True(t, outcome.Success)
	assert.Equal(t, "Rivertown", outcome.Destination)
}

func TestTravelPlanToolRejectsMalformedArguments(t *testing.T) {
	tl := NewTravelPlanTool(&recordingGenerator{})
	_, err := tl.InvokableRun(context.Background(), `destination=Rivertown`)
	assert.Error(t, err)
}

func TestDecodeArguments(t *testing.T) {
	req, err := DecodeArguments(`{"destination": "Kyoto", "days": 2.0, "preferences": ["food", "", 7], "skip_map": true, "group_type": null}`)
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", req.Destination)
	assert.Equal(t, 2, req.Days)
	assert.Equal(t, []string{"food", "7"}, req.Preferences)
	assert.True(t, req.SkipMap)
	assert.Empty(t, req.GroupType)
}

func TestGetToolInfos(t *testing.T) {
	infos, err := GetToolInfos(context.Background(), []tool.BaseTool{NewTravelPlanTool(&recordingGenerator{})})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, ToolGenerateTravelPlan, infos[0].Name)
}

func TestRunEmitsToolCallbacks(t *testing.T) {
	var started, ended []string
	var failed int
	handler := callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			started = append(started, info.Name)
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
			ended = append(ended, info.Name)
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, _ *callbacks.RunInfo, _ error) context.Context {
			failed++
			return ctx
		}).
		Build()

	tl := NewTravelPlanTool(&recordingGenerator{})
	out, err := Run(context.Background(), tl, `{"destination": "Rivertown", "days": 2}`, handler)
	require.NoError(t, err)
	assert.Contains(t, out, "Rivertown")
	assert.Equal(t, []string{ToolGenerateTravelPlan}, started)
	assert.Equal(t, []string{ToolGenerateTravelPlan}, ended)

	_, err = Run(context.Background(), tl, `not json`, handler)
	assert.Error(t, err)
	assert.Equal(t, 1, failed)

	_, err = Run(context.Background(), tl, `{"destination": "Rivertown", "days": 1}`)
	assert.NoError(t, err)
}
