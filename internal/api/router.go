package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

const (
	traceIDKey    = "trace_id"
	traceIDHeader = "X-Trace-Id"
)

// NewRouter builds the HTTP surface. metricsHandler may be nil.
func NewRouter(plans *PlanController, metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), traceID(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := r.Group("/v1")
	v1.POST("/plans", plans.CreatePlan)
	v1.POST("/tools/generate_travel_plan", plans.InvokeTool)

	sessions := v1.Group("/sessions/:sessionId/plans")
	sessions.GET("", plans.ListPlans)
	sessions.GET("/active", plans.GetActivePlan)
	sessions.GET("/:planId", plans.GetPlan)
	sessions.PUT("/:planId/active", plans.ActivatePlan)
	sessions.DELETE("/:planId", plans.DeletePlan)

	return r
}

func traceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(traceIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(traceIDKey, id)
		c.Header(traceIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Info().
			Str("trace_id", c.GetString(traceIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}
