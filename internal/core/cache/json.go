package cache

import (
	"context"
	"encoding/json"
	"time"
)

// JSON 是按命名空间划分的类型化缓存，值以 JSON 存入 Redis。
type JSON[T any] struct {
	c   *Cache
	ns  string
	ttl time.Duration
}

// NewJSON 的 c 可以为 nil：此时每次 Get 都直接调用 load。
func NewJSON[T any](c *Cache, ns string, ttl time.Duration) *JSON[T] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &JSON[T]{c: c, ns: ns, ttl: ttl}
}

// Get 读缓存，未命中时 load 并回写。load 出错不写缓存（兜底值由调用方决定）。
func (j *JSON[T]) Get(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	b, err := j.c.GetOrLoad(ctx, j.ns+key, j.ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		// 旧格式或损坏的条目：删掉后直接回源
		j.c.Del(ctx, j.ns+key)
		return load(ctx)
	}
	return out, nil
}
