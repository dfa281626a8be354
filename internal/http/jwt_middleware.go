package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solosphere/internal/metrics"
	"solosphere/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida el token de la cookie y guarda los claims en el contexto.
// El handler siguiente sólo corre si la verificación terminó con éxito.
func JWTAuthMiddleware(logger *zap.Logger, jwtSvc *service.JWTService, recorder metrics.Recorder) gin.HandlerFunc {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			return
		}

		token, err := c.Cookie(TokenCookieName)
		if err != nil || strings.TrimSpace(token) == "" {
			recorder.RecordAuthRejected("missing_token")
			abortUnauthorized(c)
			return
		}

		claims, err := jwtSvc.ParseToken(c.Request.Context(), token)
		if err != nil {
			reason := "invalid_token"
			switch {
			case errors.Is(err, service.ErrJWTExpired):
				reason = "expired_token"
			case errors.Is(err, service.ErrJWTRevoked):
				reason = "revoked_token"
			case errors.Is(err, service.ErrRevokeStore):
				reason = "revocation_unavailable"
				logger.Error("revocation check failed", zap.Error(err))
			}
			recorder.RecordAuthRejected(reason)
			logger.Info("token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("reason", reason),
			)
			abortUnauthorized(c)
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// AuthenticatedIdentity devuelve el email verificado del request.
func AuthenticatedIdentity(c *gin.Context) (string, bool) {
	claims, ok := GetAuthClaims(c)
	if !ok || claims.Email == "" {
		return "", false
	}
	return claims.Email, true
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})
}
