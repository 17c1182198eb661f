package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"heartbeat-insights/internal/core/config"
	"heartbeat-insights/internal/core/server"
	"heartbeat-insights/internal/service"
	httpez "heartbeat-insights/internal/transport/http/ez"
	"heartbeat-insights/internal/transport/http/handler"
	mdw "heartbeat-insights/internal/transport/http/middleware"
	resp "heartbeat-insights/internal/transport/http/response"
)

type Deps struct {
	Log        *zap.Logger
	Auth       *service.AuthService
	Dashboards *service.DashboardService
	Insights   *service.InsightService
	Sample     *service.SampleService
	Advice     handler.AdviceSource // 为 nil 时不挂 /advice
	Ready      func(ctx context.Context) error
	Limits     config.Limits
	Server     server.Options
}

type authModule struct {
	log   *zap.Logger
	authn gin.HandlerFunc
	auth  *handler.AuthHandler
	admin *handler.AdminHandler
}

func (m authModule) Prefix() string { return "/auth" }
func (m authModule) Priority() int  { return 10 }
func (m authModule) MountAPI(g *gin.RouterGroup) {
	e := httpez.New(g, m.log).WithAuth(m.authn)
	m.auth.Mount(e)
	m.admin.Mount(e)
}

type analyticsModule struct {
	log        *zap.Logger
	authn      gin.HandlerFunc
	dashboards *handler.DashboardHandler
	insights   *handler.InsightHandler
	extras     *handler.ExtrasHandler
}

func (m analyticsModule) Prefix() string { return "/analytics" }
func (m analyticsModule) MountAPI(g *gin.RouterGroup) {
	e := httpez.New(g, m.log).WithAuth(m.authn)
	m.dashboards.Mount(e)
	m.insights.Mount(e)
	m.extras.Mount(e)
}

// NewAPIEngine 组装完整的 API engine
func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	lim := withLimitDefaults(d.Limits)

	r := server.NewEngine(d.Server)
	// 全局中间件（顺序有讲究：先限流限并发，再超时和 recover，最后打点和访问日志）
	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.RequestTimeoutMs)*time.Millisecond),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, http.StatusNotFound, "route not found") })
	r.NoMethod(func(c *gin.Context) { resp.Abort(c, http.StatusMethodNotAllowed, "method not allowed") })

	// 探活 / 就绪 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/ready", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(c.Request.Context()); err != nil {
				l.Warn("readiness check failed", zap.Error(err))
				resp.Abort(c, http.StatusServiceUnavailable, "store unavailable")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ready": true})
	})
	r.GET("/metrics", mdw.MetricsHandler())

	api := r.Group("/api")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Heartbeat Insights API is online",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	// 业务模块（按 Priority 挂载）
	authn := mdw.Auth(d.Auth)
	MountAll(api,
		analyticsModule{
			log:        l,
			authn:      authn,
			dashboards: handler.NewDashboardHandler(d.Dashboards),
			insights:   handler.NewInsightHandler(d.Insights),
			extras:     handler.NewExtrasHandler(d.Sample, d.Advice),
		},
		authModule{
			log:   l,
			authn: authn,
			auth:  handler.NewAuthHandler(d.Auth),
			admin: handler.NewAdminHandler(d.Auth),
		},
	)
	return r
}

func withLimitDefaults(l config.Limits) config.Limits {
	if l.RPS <= 0 {
		l.RPS = 50
	}
	if l.Burst <= 0 {
		l.Burst = 100
	}
	if l.Concurrency <= 0 {
		l.Concurrency = 256
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.RequestTimeoutMs <= 0 {
		l.RequestTimeoutMs = 15000
	}
	return l
}
