package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solosphere/internal/metrics"
	"solosphere/internal/service"
)

// RouterOptions agrupa lo que el router necesita además de los handlers.
type RouterOptions struct {
	JWT            *service.JWTService
	AllowedOrigins []string
	// TrustedProxies son los únicos pares de los que se acepta X-Forwarded-For.
	// Vacío: la IP del cliente es siempre la del socket.
	TrustedProxies []string
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	authH *AuthHandler,
	jobH *JobHandler,
	bidH *BidHandler,
) *gin.Engine {
	recorder := opts.Metrics
	if recorder == nil {
		recorder = metrics.Nop()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, ignoring forwarded headers", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		zapLoggerMiddleware(logger),
		metricsMiddleware(recorder),
		gin.Recovery(),
		corsMiddleware(opts.AllowedOrigins),
	)

	requireAuth := JWTAuthMiddleware(logger, opts.JWT, recorder)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello from SoloSphere Server....")
	})

	r.POST("/jwt", authH.IssueToken)
	r.POST("/logout", authH.Logout)

	r.GET("/all-jobs", jobH.ListAll)
	r.GET("/jobs/:email", requireAuth, jobH.ListMine)
	r.GET("/job/:id", requireAuth, jobH.Get)
	r.PUT("/update-job/:id", requireAuth, jobH.Update)
	r.DELETE("/job/:id", requireAuth, jobH.Delete)
	r.POST("/add-job", requireAuth, jobH.Create)

	r.POST("/add-bid", requireAuth, bidH.Create)
	r.GET("/bids/:email", requireAuth, bidH.ListForIdentity)
	r.PATCH("/bid-status-update/:id", requireAuth, bidH.UpdateStatus)

	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware registra cada request por ruta (patrón, no path concreto).
func metricsMiddleware(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		recorder.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
