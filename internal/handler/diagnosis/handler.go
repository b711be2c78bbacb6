package diagnosis

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cropdoctor/diagnosis-api/internal/handler"
	"github.com/cropdoctor/diagnosis-api/internal/model"
	diagnosisService "github.com/cropdoctor/diagnosis-api/internal/service/diagnosis"
)

type Handler struct {
	service diagnosisService.SyncService
}

func NewHandler(service diagnosisService.SyncService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	diagnoses := r.Group("/diagnoses")
	{
		diagnoses.POST("", h.CreateDiagnosis)
		diagnoses.GET("", h.GetHistory)
		diagnoses.GET("/search", h.SearchByDisease)
		diagnoses.GET("/review-queue", h.ListNeedingReview)
		diagnoses.GET("/:id", h.GetDiagnosis)
		diagnoses.POST("/:id/review", h.SubmitReview)
		diagnoses.DELETE("/:id", h.EvictDiagnosis)
		diagnoses.DELETE("", h.EvictAll)
	}
}

func (h *Handler) CreateDiagnosis(c *gin.Context) {
	var req model.CreateDiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request body"))
		return
	}

	record, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

func (h *Handler) GetDiagnosis(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	record, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) GetHistory(c *gin.Context) {
	opts := diagnosisService.HistoryOptions{
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	if farmerID := c.Query("farmer_id"); farmerID != "" {
		opts.FarmerID = &farmerID
	}
	if minStr := c.Query("min_confidence"); minStr != "" {
		min, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid min_confidence"))
			return
		}
		records, err := h.service.FilterByConfidence(c.Request.Context(), min)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, handler.NewListResponse(records, &handler.Meta{Total: len(records)}))
		return
	}

	result, err := h.service.GetHistory(c.Request.Context(), opts)
	if err != nil {
		c.Error(err)
		return
	}

	meta := &handler.Meta{Total: result.Total, FromCache: result.FromCache}
	if result.RemoteErr != nil {
		meta.Notice = result.RemoteErr.Error()
	}
	c.JSON(http.StatusOK, handler.NewListResponse(result.Records, meta))
}

func (h *Handler) SearchByDisease(c *gin.Context) {
	disease := c.Query("disease")
	if disease == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("disease query parameter is required"))
		return
	}

	records, err := h.service.SearchByDisease(c.Request.Context(), disease)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewListResponse(records, &handler.Meta{Total: len(records)}))
}

func (h *Handler) ListNeedingReview(c *gin.Context) {
	records, err := h.service.ListNeedingReview(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewListResponse(records, &handler.Meta{Total: len(records)}))
}

type reviewRequest struct {
	ExpertID *string `json:"expert_id"`
	Comment  *string `json:"comment"`
	Status   *string `json:"status"`
}

func (h *Handler) SubmitReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request body"))
		return
	}

	review := diagnosisService.ReviewInput{
		ExpertID: req.ExpertID,
		Comment:  req.Comment,
	}
	if req.Status != nil {
		status := model.DiagnosisStatus(*req.Status)
		switch status {
		case model.StatusPending, model.StatusConfirmed, model.StatusCorrected, model.StatusRejected:
			review.Status = &status
		default:
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid review status"))
			return
		}
	}

	record, err := h.service.SubmitReview(c.Request.Context(), id, review)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) EvictDiagnosis(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Evict(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) EvictAll(c *gin.Context) {
	if err := h.service.EvictAll(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid diagnosis id"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
