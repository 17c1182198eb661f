package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongo 仓储共用的集合名
const (
	CollUsers      = "users"
	CollDashboards = "dashboards"
	CollInsights   = "insights"
)

type MongoOpts struct {
	URI      string
	Database string
	Timeout  time.Duration
	AppName  string
}

// NewMongo 连接并 ping 主节点，返回 database 句柄（调用方负责 db.Client().Disconnect）
func NewMongo(ctx context.Context, o MongoOpts) (*mongo.Database, error) {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	opts := options.Client().
		ApplyURI(o.URI).
		SetServerSelectionTimeout(o.Timeout).
		SetConnectTimeout(o.Timeout)
	if o.AppName != "" {
		opts.SetAppName(o.AppName)
	}

	cctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(o.Database), nil
}

// EnsureMongoIndexes 创建邮箱唯一索引和列表排序索引（同规格重复创建是幂等的）
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	// 用默认名 email_1：老库上已有的同名索引直接复用，避免 IndexOptionsConflict
	if _, err := db.Collection(CollUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := db.Collection(CollDashboards).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("dashboards index: %w", err)
	}
	if _, err := db.Collection(CollInsights).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "priorityRank", Value: -1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "dashboardId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("insights index: %w", err)
	}
	return nil
}
