package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solosphere/internal/domain"
	"solosphere/internal/metrics"
	"solosphere/internal/repository"
	"solosphere/internal/service"
)

// JobHandler mantiene dependencias para endpoints de publicaciones.
type JobHandler struct {
	logger  *zap.Logger
	jobServ *service.JobService
	metrics metrics.Recorder
}

// NewJobHandler crea una instancia de JobHandler con dependencias necesarias.
func NewJobHandler(logger *zap.Logger, jobServ *service.JobService, recorder metrics.Recorder) *JobHandler {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &JobHandler{
		logger:  logger,
		jobServ: jobServ,
		metrics: recorder,
	}
}

type buyerInfoRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type jobRequest struct {
	Title       string            `json:"job_title" binding:"required"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Deadline    *time.Time        `json:"deadline"`
	MinPrice    float64           `json:"min_price" binding:"gte=0"`
	MaxPrice    float64           `json:"max_price" binding:"gte=0"`
	BuyerInfo   *buyerInfoRequest `json:"buyerInfo"`
}

func (r jobRequest) toInput() service.JobInput {
	input := service.JobInput{
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Deadline:    r.Deadline,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
	}
	if r.BuyerInfo != nil {
		input.BuyerInfo = domain.BuyerInfo{
			Email: r.BuyerInfo.Email,
			Name:  r.BuyerInfo.Name,
			Photo: r.BuyerInfo.Photo,
		}
	}
	return input
}

// ListAll maneja GET /all-jobs?filter=&search=&sort=.
func (h *JobHandler) ListAll(c *gin.Context) {
	jobs, err := h.jobServ.List(c.Request.Context(), repository.JobListingParams{
		Category: c.Query("filter"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "list jobs")
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// ListMine maneja GET /jobs/:email.
func (h *JobHandler) ListMine(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	jobs, err := h.jobServ.ListByBuyer(c.Request.Context(), identity, c.Param("email"))
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "list posted jobs")
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// Get maneja GET /job/:id. Un id inexistente responde null.
func (h *JobHandler) Get(c *gin.Context) {
	if _, ok := requireIdentity(c); !ok {
		return
	}
	job, err := h.jobServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "get job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// Create maneja POST /add-job.
func (h *JobHandler) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add job request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.jobServ.Create(c.Request.Context(), identity, req.toInput())
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "add job")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Update maneja PUT /update-job/:id con semántica de upsert.
func (h *JobHandler) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update job request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.jobServ.Update(c.Request.Context(), identity, c.Param("id"), req.toInput())
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "update job")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Delete maneja DELETE /job/:id.
func (h *JobHandler) Delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	res, err := h.jobServ.Delete(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "delete job")
		return
	}
	c.JSON(http.StatusOK, res)
}
