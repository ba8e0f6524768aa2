package analysis

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labwise/lab-api/internal/handler"
	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/internal/service/analysis"
	"github.com/labwise/lab-api/pkg/event"
)

type Handler struct {
	service *analysis.Service
}

func NewHandler(service *analysis.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	h.register(r, nil)
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, eventTracker *event.EventTracker) {
	h.register(r, eventTracker)
}

func (h *Handler) register(r *gin.RouterGroup, eventTracker *event.EventTracker) {
	analyses := r.Group("/analyses")
	{
		if eventTracker != nil {
			analyses.POST("", eventTracker.TrackEvent("analyses", "create"), h.SubmitAnalysis)
		} else {
			analyses.POST("", h.SubmitAnalysis)
		}
		analyses.POST("/evaluate", h.Evaluate)
		analyses.POST("/simulate", h.Simulate)
		analyses.POST("/demo", h.SeedDemo)
		analyses.GET("", h.ListAnalyses)
		analyses.GET("/worklist", h.Worklist)
		analyses.GET("/stats", h.Stats)
		analyses.GET("/:id/report", h.GetReport)
	}

	patients := r.Group("/patients")
	{
		patients.GET("/:id/analyses", h.PatientHistory)
		patients.GET("/:id/analyses/latest", h.LatestAnalysis)
		patients.GET("/:id/analyses/trends", h.PatientTrends)
	}
}

// SubmitAnalysis validates, evaluates and stores a new analysis record,
// returning the full evaluation report.
func (h *Handler) SubmitAnalysis(c *gin.Context) {
	var req model.CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	report, err := h.service.SubmitAnalysis(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	if eventCtx, ok := event.FromContext(c); ok {
		eventCtx.NewData = report.Record
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(report))
}

// Evaluate classifies a result set without storing it.
func (h *Handler) Evaluate(c *gin.Context) {
	var req model.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	report, err := h.service.Evaluate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

// Simulate returns a fabricated analyzer read-out. An empty body means
// the whole catalog with no gender bias.
func (h *Handler) Simulate(c *gin.Context) {
	var req model.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rs, err := h.service.Simulate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rs))
}

// SeedDemo loads the demo dataset into the store.
func (h *Handler) SeedDemo(c *gin.Context) {
	records, err := h.service.SeedDemo(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(records))
}

func (h *Handler) ListAnalyses(c *gin.Context) {
	records, err := h.service.ListRecords(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

// Worklist lists records in review order: urgent first, newest first
// within the same priority.
func (h *Handler) Worklist(c *gin.Context) {
	records, err := h.service.Worklist(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

// GetReport returns the stored record's full evaluation.
func (h *Handler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid record ID"))
		return
	}

	report, err := h.service.Report(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

func (h *Handler) PatientHistory(c *gin.Context) {
	records, err := h.service.PatientHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) LatestAnalysis(c *gin.Context) {
	record, err := h.service.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

// PatientTrends compares the patient's two most recent records.
func (h *Handler) PatientTrends(c *gin.Context) {
	trends, err := h.service.TrendsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(trends))
}
