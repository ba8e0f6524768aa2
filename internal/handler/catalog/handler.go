package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labwise/lab-api/internal/catalog"
	"github.com/labwise/lab-api/internal/handler"
	"github.com/labwise/lab-api/internal/model"
)

type Handler struct {
	catalog *catalog.Catalog
	rules   []model.PatternRule
}

func NewHandler(cat *catalog.Catalog, rules []model.PatternRule) *Handler {
	return &Handler{catalog: cat, rules: rules}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	parameters := r.Group("/parameters")
	{
		parameters.GET("", h.ListParameters)
		parameters.GET("/:code", h.GetParameter)
	}
	r.GET("/patterns", h.ListPatterns)
}

// ListParameters returns the catalog, optionally filtered by group.
func (h *Handler) ListParameters(c *gin.Context) {
	if group := c.Query("group"); group != "" {
		defs := h.catalog.ListGroup(model.ParameterGroup(group))
		if len(defs) == 0 {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("unknown parameter group"))
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(defs))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.catalog.List()))
}

func (h *Handler) GetParameter(c *gin.Context) {
	def, err := h.catalog.Lookup(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(def))
}

// ListPatterns returns the active pattern rule set in evaluation order.
func (h *Handler) ListPatterns(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.rules))
}
