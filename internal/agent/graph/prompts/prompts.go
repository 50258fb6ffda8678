package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
)

var (
	//go:embed template/query_prompt.txt
	querySystemPrompt string

	//go:embed template/extract_prompt.txt
	extractSystemPrompt string

	//go:embed template/extract_user.txt
	extractUserPrompt string

	//go:embed template/plan_prompt.txt
	planSystemPrompt string

	//go:embed template/plan_user.txt
	planUserPrompt string
)

// QueryInput feeds the query-generation prompt.
type QueryInput struct {
	Profile model.UserProfile
	Round   int
	Missing []string
	History []string
	Count   int
}

// RenderQueryMessages renders the query prompt via Eino prompt component so prompt callbacks fire.
func RenderQueryMessages(ctx context.Context, in QueryInput) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(querySystemPrompt),
		schema.UserMessage("Write the queries now."),
	)
	vars := map[string]any{
		"Destination": in.Profile.Destination,
		"Days":        in.Profile.Days,
		"GroupType":   orDefault(in.Profile.GroupType, "general"),
		"Preferences": joinOr(in.Profile.Preferences, "none"),
		"Round":       in.Round,
		"Missing":     strings.Join(in.Missing, ", "),
		"History":     in.History,
		"Count":       in.Count,
	}
	return format(ctx, tpl, vars, "query")
}

// ExtractInput feeds the extraction prompt.
type ExtractInput struct {
	Profile model.UserProfile
	Notes   []model.CompressedNote
}

type noteView struct {
	Number  int
	Title   string
	Likes   int
	Content string
}

// RenderExtractMessages renders the extraction prompt with the round's kept notes.
func RenderExtractMessages(ctx context.Context, in ExtractInput) ([]*schema.Message, error) {
	notes := make([]noteView, 0, len(in.Notes))
	for i, n := range in.Notes {
		notes = append(notes, noteView{Number: i + 1, Title: n.Title, Likes: n.Likes, Content: n.Content})
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(extractSystemPrompt),
		schema.UserMessage(extractUserPrompt),
	)
	vars := map[string]any{
		"Destination": in.Profile.Destination,
		"Days":        in.Profile.Days,
		"Preferences": joinOr(in.Profile.Preferences, "none"),
		"Notes":       notes,
	}
	return format(ctx, tpl, vars, "extract")
}

// PlanInput feeds the planning prompt. Facts is the serialised accumulator.
type PlanInput struct {
	Profile model.UserProfile
	Facts   string
}

// RenderPlanMessages renders the planning prompt.
func RenderPlanMessages(ctx context.Context, in PlanInput) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(planSystemPrompt),
		schema.UserMessage(planUserPrompt),
	)
	p := in.Profile
	vars := map[string]any{
		"Destination": p.Destination,
		"Days":        p.Days,
		"Origin":      orDefault(p.Origin, "not given"),
		"DateRange":   orDefault(p.DateRange, "flexible"),
		"GroupType":   orDefault(p.GroupType, "general"),
		"Preferences": joinOr(p.Preferences, "none"),
		"Budget":      orDefault(p.Budget, "moderate"),
		"Facts":       orDefault(in.Facts, "{}"),
	}
	return format(ctx, tpl, vars, "plan")
}

func format(ctx context.Context, tpl prompt.ChatTemplate, vars map[string]any, name string) ([]*schema.Message, error) {
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("%s prompt render: empty result", name)
	}
	return msgs, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinOr(list []string, def string) string {
	if len(list) == 0 {
		return def
	}
	return strings.Join(list, ", ")
}
