package api

import (
	"net/http"
	"time"

	"elite-gym/pkg/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Funnel       *FunnelHandler
	Plans        *PlanHandler
	Registration *RegistrationHandler
}

// RouterOptions configure the engine around the handlers.
type RouterOptions struct {
	CORSOrigins []string
	Gatherer    prometheus.Gatherer
	Logger      *logging.Logger
}

func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	r.GET("/ws/chat/:id", h.Funnel.Stream)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/plans", h.Plans.GetPlans)

		chat := apiGroup.Group("/chat/sessions")
		{
			chat.POST("", h.Funnel.OpenSession)
			chat.GET("/:id", h.Funnel.GetSession)
			chat.POST("/:id/messages", h.Funnel.SubmitText)
			chat.POST("/:id/interest", h.Funnel.SelectInterest)
			chat.POST("/:id/resend", h.Funnel.Resend)
			chat.DELETE("/:id", h.Funnel.CloseSession)
		}

		reg := apiGroup.Group("/registration")
		{
			reg.POST("", h.Registration.Open)
			reg.GET("/:id", h.Registration.Get)
			reg.POST("/:id/plan", h.Registration.SelectPlan)
			reg.POST("/:id/continue", h.Registration.Continue)
			reg.PATCH("/:id/form", h.Registration.UpdateForm)
			reg.POST("/:id/back", h.Registration.Back)
			reg.POST("/:id/submit", h.Registration.Submit)
			reg.DELETE("/:id", h.Registration.Cancel)
		}
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
