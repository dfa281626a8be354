package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solosphere/internal/metrics"
	"solosphere/internal/service"
)

// writeServiceError traduce errores de servicio a respuestas HTTP. Todo error
// no reconocido se loguea y responde 500: ningún request queda sin respuesta.
func writeServiceError(c *gin.Context, logger *zap.Logger, recorder metrics.Recorder, err error, op string) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		recorder.RecordAuthRejected("forbidden")
		logger.Info("ownership check failed", zap.String("path", c.Request.URL.Path), zap.String("op", op))
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden access"})
	case errors.Is(err, service.ErrDuplicateBid):
		c.JSON(http.StatusBadRequest, gin.H{"message": "You already bid this job!"})
	case errors.Is(err, service.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
	case errors.Is(err, service.ErrInvalidJob),
		errors.Is(err, service.ErrInvalidBid),
		errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
	}
}

// requireIdentity devuelve la identidad puesta por JWTAuthMiddleware.
func requireIdentity(c *gin.Context) (string, bool) {
	identity, ok := AuthenticatedIdentity(c)
	if !ok {
		abortUnauthorized(c)
	}
	return identity, ok
}
