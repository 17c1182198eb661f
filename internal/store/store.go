// Package store 按配置打开存储后端并暴露各仓储
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"heartbeat-insights/internal/core/config"
	"heartbeat-insights/internal/core/database"
	"heartbeat-insights/internal/core/logger"
	"heartbeat-insights/internal/domain"
	"heartbeat-insights/internal/repo"
	"heartbeat-insights/internal/repo/memory"
	"heartbeat-insights/internal/repo/mongodb"
)

type Store struct {
	Driver     string
	Users      domain.UserRepository
	Dashboards domain.DashboardRepository
	Insights   domain.InsightRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping 检查后端是否可用（memory 恒为可用）
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open 按 db.driver 选择后端：memory / mongo / 其余走 gorm（postgres、mysql、sqlite）
func Open(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Store, error) {
	switch cfg.DB.Driver {
	case "memory":
		return Memory(), nil
	case "mongo":
		return openMongo(ctx, cfg)
	default:
		return openGorm(cfg, l)
	}
}

// Memory 进程内存储（重启即丢，测试和本地演示用）
func Memory() *Store {
	return &Store{
		Driver:     "memory",
		Users:      memory.NewUsersRepo(),
		Dashboards: memory.NewDashboardsRepo(),
		Insights:   memory.NewInsightsRepo(),
	}
}

func openMongo(ctx context.Context, cfg *config.Config) (*Store, error) {
	db, err := database.NewMongo(ctx, database.MongoOpts{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  time.Duration(cfg.Mongo.TimeoutSec) * time.Second,
		AppName:  cfg.App.Name,
	})
	if err != nil {
		return nil, err
	}
	if err := database.EnsureMongoIndexes(ctx, db); err != nil {
		_ = db.Client().Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return &Store{
		Driver:     "mongo",
		Users:      mongodb.NewUsersRepo(db),
		Dashboards: mongodb.NewDashboardsRepo(db),
		Insights:   mongodb.NewInsightsRepo(db),
		ping:       func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
		close:      func(ctx context.Context) error { return db.Client().Disconnect(ctx) },
	}, nil
}

func openGorm(cfg *config.Config, l *zap.Logger) (*Store, error) {
	gormLog, err := logger.ToStdLogger(l.Named("gorm"), zapcore.InfoLevel)
	if err != nil {
		return nil, err
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                gormLog,
	})
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &Store{
		Driver:     cfg.DB.Driver,
		Users:      repo.NewUserRepo(db),
		Dashboards: repo.NewDashboardRepo(db),
		Insights:   repo.NewInsightRepo(db),
		ping:       sqlDB.PingContext,
		close:      func(context.Context) error { return sqlDB.Close() },
	}, nil
}
