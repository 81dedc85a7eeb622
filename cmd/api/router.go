package main

import (
	"net/http"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/richxcame/invoice-insights/internal/analytics"
	"github.com/richxcame/invoice-insights/internal/currency"
	"github.com/richxcame/invoice-insights/internal/invoices"
	"github.com/richxcame/invoice-insights/pkg/common"
	"github.com/richxcame/invoice-insights/pkg/config"
	"github.com/richxcame/invoice-insights/pkg/middleware"
)

// uploadGrace lets the importer record context errors for the remaining rows
// before the route-level timeout answers.
const uploadGrace = 5 * time.Second

type routerDeps struct {
	cfg       *config.Config
	invoices  *invoices.Handler
	analytics *analytics.Handler
	currency  *currency.Handler
	checks    map[string]func() error
	sentry    bool
}

func setupRouter(d routerDeps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(d.cfg.Server.ServiceName))
	router.Use(middleware.SecurityHeaders())
	if d.sentry {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(d.cfg.Server.CORSOrigins)))

	router.GET("/healthz", common.HealthCheck(d.cfg.Server.ServiceName, version))
	router.GET("/health/live", common.LivenessProbe(d.cfg.Server.ServiceName, version))
	router.GET("/health/ready", common.ReadinessProbe(d.cfg.Server.ServiceName, version, d.checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		d.invoices.RegisterRoutes(api,
			middleware.MaxBodySize(d.cfg.Import.MaxUploadSize),
			uploadTimeout(d.cfg.Import.Timeout+uploadGrace),
		)
		d.analytics.RegisterRoutes(api)
		d.currency.RegisterRoutes(api)
	}

	return router
}

func uploadTimeout(d time.Duration) gin.HandlerFunc {
	return timeout.New(
		timeout.WithTimeout(d),
		timeout.WithResponse(func(c *gin.Context) {
			common.ErrorResponse(c, http.StatusRequestTimeout, "upload timed out")
		}),
	)
}

func corsConfig(origins string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Request-ID"}

	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowed
	return cfg
}
