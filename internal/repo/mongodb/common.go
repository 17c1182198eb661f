package mongodb

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"heartbeat-insights/internal/domain"
)

var opDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Latency of document store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "op", "outcome"},
)

func init() { prometheus.MustRegister(opDuration) }

// 用法：defer track(coll, op, time.Now(), &err)
func track(coll, op string, start time.Time, err *error) {
	outcome := "ok"
	if err != nil && *err != nil {
		outcome = "error"
		if errors.Is(*err, domain.ErrNotFound) {
			outcome = "not_found"
		}
	}
	opDuration.WithLabelValues(coll, op, outcome).Observe(time.Since(start).Seconds())
}

// parseID 非法 hex id 视为 ErrNotFound（不可能匹配到文档）
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return oid, nil
}

// parseIDs 丢弃非法 id
func parseIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

// refID 转换归属/引用 id；空串保持零值
func refID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidInput
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}
