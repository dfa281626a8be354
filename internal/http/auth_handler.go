package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solosphere/internal/metrics"
	"solosphere/internal/service"
)

// AuthHandler mantiene dependencias para emitir y cerrar sesiones.
type AuthHandler struct {
	logger  *zap.Logger
	jwtServ *service.JWTService
	limiter service.IssueRateLimiter
	cookies CookieOptions
	metrics metrics.Recorder
}

// NewAuthHandler crea una instancia de AuthHandler. limiter puede ser nil.
func NewAuthHandler(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	limiter service.IssueRateLimiter,
	cookies CookieOptions,
	recorder metrics.Recorder,
) *AuthHandler {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &AuthHandler{
		logger:  logger,
		jwtServ: jwtServ,
		limiter: limiter,
		cookies: cookies,
		metrics: recorder,
	}
}

// IssueToken maneja POST /jwt.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	issued, err := h.jwtServ.IssueToken(req.Email)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	h.cookies.setTokenCookie(c, issued.Token)
	h.metrics.RecordTokenIssued()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cookie has been sent"})
}

// Logout maneja POST /logout. Borra la cookie y, si hay store de revocación,
// invalida el token hasta su vencimiento.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(TokenCookieName); err == nil && h.jwtServ != nil {
		if err := h.jwtServ.Revoke(c.Request.Context(), token); err != nil {
			h.logger.Warn("token revoke failed", zap.Error(err))
		}
	}

	h.cookies.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cookie has been removed"})
}
