package api

import (
	"context"
	"io"
	"net/http"

	"github.com/cloudwego/eino/components/tool"
	"github.com/gin-gonic/gin"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/graph/observers"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/service"
	"github.com/Wayfarer-core-poc-v1/server/internal/agent/tools"
)

// PlanService is what the controller needs from service.Planner.
type PlanService interface {
	Generate(ctx context.Context, req service.Request) *model.Outcome
	Plans(ctx context.Context, sessionID string) ([]*model.StoredPlan, error)
	StoredPlan(ctx context.Context, sessionID, planID string) (*model.StoredPlan, error)
	ActivePlan(ctx context.Context, sessionID string) (*model.StoredPlan, error)
	ActivatePlan(ctx context.Context, sessionID, planID string) error
	DeletePlan(ctx context.Context, sessionID, planID string) error
}

type PlanController struct {
	planService PlanService
	planTool    tool.InvokableTool
}

func NewPlanController(planService PlanService, planTool tool.InvokableTool) *PlanController {
	return &PlanController{
		planService: planService,
		planTool:    planTool,
	}
}

// CreatePlan runs one planning request. The outcome is returned as data whether the run
// succeeded, produced a partial result or failed.
func (p *PlanController) CreatePlan(c *gin.Context) {
	var req service.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	out := p.planService.Generate(c.Request.Context(), req)
	switch {
	case out.Success:
		RespondSuccess(c, out, "plan generated")
	case out.Partial:
		RespondSuccess(c, out, "plan incomplete, returning collected facts")
	default:
		c.JSON(http.StatusOK, APIResponse{
			Status:  "error",
			Code:    http.StatusOK,
			Message: out.Error,
			TraceID: c.GetString(traceIDKey),
			Data:    out,
		})
	}
}

// InvokeTool runs the generate_travel_plan tool with the raw body as its arguments and
// returns the tool output unchanged.
func (p *PlanController) InvokeTool(c *gin.Context) {
	if p.planTool == nil {
		RespondError(c, http.StatusServiceUnavailable, "tool is not configured")
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		RespondError(c, http.StatusBadRequest, "tool arguments are required")
		return
	}
	out, err := tools.Run(c.Request.Context(), p.planTool, string(body), observers.NewToolCallbacks())
	if err != nil {
		RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
}

func (p *PlanController) ListPlans(c *gin.Context) {
	plans, err := p.planService.Plans(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, plans, "plans fetched successfully")
}

func (p *PlanController) GetPlan(c *gin.Context) {
	plan, err := p.planService.StoredPlan(c.Request.Context(), c.Param("sessionId"), c.Param("planId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, plan, "plan fetched successfully")
}

func (p *PlanController) GetActivePlan(c *gin.Context) {
	plan, err := p.planService.ActivePlan(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, plan, "active plan fetched successfully")
}

func (p *PlanController) ActivatePlan(c *gin.Context) {
	if err := p.planService.ActivatePlan(c.Request.Context(), c.Param("sessionId"), c.Param("planId")); err != nil {
		HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"plan_id": c.Param("planId")}, "plan activated")
}

func (p *PlanController) DeletePlan(c *gin.Context) {
	if err := p.planService.DeletePlan(c.Request.Context(), c.Param("sessionId"), c.Param("planId")); err != nil {
		HandleServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"plan_id": c.Param("planId")}, "plan deleted")
}
