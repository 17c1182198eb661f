package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"heartbeat-insights/internal/advice"
	"heartbeat-insights/internal/core/auth"
	"heartbeat-insights/internal/core/cache"
	"heartbeat-insights/internal/core/config"
	"heartbeat-insights/internal/core/logger"
	"heartbeat-insights/internal/core/server"
	"heartbeat-insights/internal/core/tracing"
	"heartbeat-insights/internal/service"
	"heartbeat-insights/internal/store"
	"heartbeat-insights/internal/transport/http/router"
)

func main() {
	// 配置（.env 可选）
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	// 日志
	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate:      logger.FileRotate(cfg.Log.Rotate),
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatal("tracing init failed", zap.Error(err))
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	// 存储（失败会直接 Fatal）
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("store open failed", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	defer func() { _ = st.Close(context.Background()) }()
	log.Info("store connected", zap.String("driver", st.Driver))

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = randomSecret()
		log.Warn("jwt.secret not set; using a random secret, tokens will not survive a restart")
	}
	jwter := &auth.JWTer{Secret: []byte(secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}

	// 服务
	authSvc := service.NewAuthService(st.Users, st.Dashboards, st.Insights, jwter, log.Named("auth"))
	dashSvc := service.NewDashboardService(st.Dashboards, st.Users, log.Named("dashboard"))
	insSvc := service.NewInsightService(st.Insights, st.Dashboards, st.Users, log.Named("insight"))
	sampleSvc := service.NewSampleService(dashSvc, insSvc, log.Named("sample"))

	// 启动时确保管理员存在
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		u, created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal("admin bootstrap failed", zap.Error(err))
		}
		log.Info("admin ready", zap.String("user_id", u.ID), zap.Bool("created", created))
	}

	// 健康建议（Redis 可选，不可用时只是不缓存）
	var adviceCache *cache.Cache
	if cfg.Redis.Addr != "" {
		adviceCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer adviceCache.Close()
		if err := adviceCache.Ping(ctx); err != nil {
			log.Warn("redis unreachable; advice will not be cached", zap.Error(err))
		}
	}
	adviceClient := advice.New(advice.Config{
		BaseURL: cfg.Advice.BaseURL,
		Timeout: time.Duration(cfg.Advice.TimeoutSec) * time.Second,
		Cache:   adviceCache,
		TTL:     time.Duration(cfg.Redis.AdviceTTLSec) * time.Second,
		Log:     log.Named("advice"),
	})

	// 路由
	mode := gin.DebugMode
	if cfg.IsProd() {
		mode = gin.ReleaseMode
	}
	r := router.NewAPIEngine(router.Deps{
		Log:        log,
		Auth:       authSvc,
		Dashboards: dashSvc,
		Insights:   insSvc,
		Sample:     sampleSvc,
		Advice:     adviceClient,
		Ready:      st.Ping,
		Limits:     cfg.Limits,
		Server: server.Options{
			Name:        cfg.App.Name,
			Mode:        mode,
			CORSOrigins: cfg.App.CORSOrigins,
			Tracing:     cfg.Tracing.Enabled,
		},
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("heartbeat api starting",
		zap.String("env", cfg.App.Env),
		zap.String("open", baseURL+"/api"),
		zap.String("health", baseURL+"/health"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil {
			log.Fatal("heartbeat api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	if err := server.Shutdown(srv, 10*time.Second); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("heartbeat api stopped gracefully")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
