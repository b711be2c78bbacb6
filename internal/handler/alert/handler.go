package alert

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cropdoctor/diagnosis-api/internal/handler"
	alertService "github.com/cropdoctor/diagnosis-api/internal/service/alert"
)

type Handler struct {
	service alertService.AlertService
}

func NewHandler(service alertService.AlertService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.GET("/nearby", h.NearbyAlerts)
	}
}

func (h *Handler) ListAlerts(c *gin.Context) {
	var severity *string
	if s := c.Query("severity"); s != "" {
		severity = &s
	}

	if disease := c.Query("disease"); disease != "" {
		alerts, err := h.service.FilterByDisease(c.Request.Context(), disease)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, handler.NewListResponse(alerts, &handler.Meta{Total: len(alerts)}))
		return
	}

	alerts, err := h.service.List(c.Request.Context(), severity)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewListResponse(alerts, &handler.Meta{Total: len(alerts)}))
}

func (h *Handler) NearbyAlerts(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid lat"))
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid lon"))
		return
	}

	var alerts interface{}
	if c.Query("all") == "true" {
		alerts, err = h.service.RankAll(c.Request.Context(), lat, lon)
	} else {
		alerts, err = h.service.Nearby(c.Request.Context(), lat, lon)
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}
