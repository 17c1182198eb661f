// 管理员初始化工具：创建管理员账号，或把已有账号提升为 admin
//
//	admin -email ops@example.com -password s3cret [-name Ops]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"heartbeat-insights/internal/core/auth"
	"heartbeat-insights/internal/core/config"
	"heartbeat-insights/internal/core/logger"
	"heartbeat-insights/internal/service"
	"heartbeat-insights/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfgPath := flag.String("config", "", "config file (defaults to CONFIG_PATH or ./configs/config.local.yaml)")
	name := flag.String("name", "", "display name for a new admin (defaults to admin.name or \"Admin\")")
	email := flag.String("email", "", "admin email (defaults to admin.email)")
	password := flag.String("password", "", "password for a new admin (defaults to admin.password)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	// 命令行参数优先，缺省取配置
	if *name == "" {
		*name = cfg.Admin.Name
	}
	if *email == "" {
		*email = cfg.Admin.Email
	}
	if *password == "" {
		*password = cfg.Admin.Password
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "admin: -email and -password are required")
		flag.Usage()
		os.Exit(2)
	}
	if cfg.DB.Driver == "memory" {
		log.Warn("db.driver is memory; the admin account will vanish when this process exits")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 存储
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("store open failed", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	defer func() { _ = st.Close(context.Background()) }()

	// 这里不签发 token，但 service 需要一个 signer
	jwter := &auth.JWTer{Secret: []byte("admin-cli"), Issuer: cfg.JWT.Issuer, TTL: time.Minute}
	svc := service.NewAuthService(st.Users, st.Dashboards, st.Insights, jwter, log)

	u, created, err := svc.EnsureAdmin(ctx, *name, *email, *password)
	if err != nil {
		log.Error("ensure admin failed", zap.Error(err))
		os.Exit(1)
	}
	if created {
		fmt.Printf("created admin %s (%s)\n", u.Email, u.ID)
	} else {
		fmt.Printf("%s (%s) is an admin\n", u.Email, u.ID)
	}
}
