package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solosphere/internal/metrics"
	"solosphere/internal/service"
)

// BidHandler mantiene dependencias para endpoints de ofertas.
type BidHandler struct {
	logger  *zap.Logger
	bidServ *service.BidService
	metrics metrics.Recorder
}

// NewBidHandler crea una instancia de BidHandler con dependencias necesarias.
func NewBidHandler(logger *zap.Logger, bidServ *service.BidService, recorder metrics.Recorder) *BidHandler {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &BidHandler{
		logger:  logger,
		bidServ: bidServ,
		metrics: recorder,
	}
}

// Create maneja POST /add-bid.
func (h *BidHandler) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		JobID    string     `json:"jobId" binding:"required"`
		JobTitle string     `json:"job_title"`
		Category string     `json:"category"`
		Email    string     `json:"email" binding:"omitempty,email"`
		Buyer    string     `json:"buyer"`
		Price    float64    `json:"price" binding:"gte=0"`
		Comment  string     `json:"comment"`
		Deadline *time.Time `json:"deadline"`
		Status   string     `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add bid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.bidServ.Create(c.Request.Context(), identity, service.BidInput{
		JobID:    req.JobID,
		JobTitle: req.JobTitle,
		Category: req.Category,
		Email:    req.Email,
		Buyer:    req.Buyer,
		Price:    req.Price,
		Comment:  req.Comment,
		Deadline: req.Deadline,
		Status:   req.Status,
	})
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "add bid")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListForIdentity maneja GET /bids/:email?buyer=true.
func (h *BidHandler) ListForIdentity(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	bids, err := h.bidServ.ListForIdentity(c.Request.Context(), identity, c.Param("email"), parseFlag(c.Query("buyer")))
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "list bids")
		return
	}
	c.JSON(http.StatusOK, bids)
}

// UpdateStatus maneja PATCH /bid-status-update/:id.
func (h *BidHandler) UpdateStatus(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid bid status request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.bidServ.UpdateStatus(c.Request.Context(), identity, c.Param("id"), req.Status)
	if err != nil {
		writeServiceError(c, h.logger, h.metrics, err, "update bid status")
		return
	}
	c.JSON(http.StatusOK, res)
}

// parseFlag acepta true/false/1/0; cualquier otro valor no vacío cuenta como true.
func parseFlag(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return true
}
