// Package advice 从 Advice Slip API 拉取健康小贴士
package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"heartbeat-insights/internal/core/cache"
)

const (
	DefaultBaseURL = "https://api.adviceslip.com"
	SourceRemote   = "Advice Slip API"
	SourceSystem   = "System"
)

// Terms 随机选词搜索，避免每次返回同一条
var Terms = []string{"health", "heart", "life", "care", "wellness", "body", "mind"}

// Fallback 远端不可用时的兜底建议（不写缓存）
var Fallback = Advice{ID: 0, Advice: "Take care of your cardiovascular health every day.", Source: SourceSystem}

var errNoSlips = errors.New("advice: no slips found")

type Advice struct {
	ID     int    `json:"id"`
	Advice string `json:"advice"`
	Source string `json:"source"`
}

type slip struct {
	ID     int    `json:"id"`
	Advice string `json:"advice"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Cache   *cache.Cache
	TTL     time.Duration
	Log     *zap.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	slips      *cache.JSON[[]slip]
	log        *zap.Logger
	intn       func(n int) int
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		slips:      cache.NewJSON[[]slip](cfg.Cache, "advice:", cfg.TTL),
		log:        log,
		intn:       rand.IntN,
	}
}

// Get 不返回错误：远端失败一律降级为 Fallback
func (c *Client) Get(ctx context.Context) Advice {
	term := Terms[c.intn(len(Terms))]
	slips, err := c.slips.Get(ctx, term, func(ctx context.Context) ([]slip, error) {
		s, err := c.search(ctx, term)
		if errors.Is(err, errNoSlips) {
			one, err := c.random(ctx)
			if err != nil {
				return nil, err
			}
			return []slip{*one}, nil
		}
		return s, err
	})
	if err != nil || len(slips) == 0 {
		c.log.Warn("advice api unavailable, serving fallback", zap.String("term", term), zap.Error(err))
		return Fallback
	}
	pick := slips[c.intn(len(slips))]
	return Advice{ID: pick.ID, Advice: pick.Advice, Source: SourceRemote}
}

func (c *Client) search(ctx context.Context, term string) ([]slip, error) {
	var body struct {
		Slips []slip `json:"slips"`
	}
	if err := c.getJSON(ctx, "/advice/search/"+url.PathEscape(term), &body); err != nil {
		return nil, err
	}
	if len(body.Slips) == 0 {
		return nil, errNoSlips
	}
	return body.Slips, nil
}

func (c *Client) random(ctx context.Context) (*slip, error) {
	var body struct {
		Slip *slip `json:"slip"`
	}
	if err := c.getJSON(ctx, "/advice", &body); err != nil {
		return nil, err
	}
	if body.Slip == nil || body.Slip.Advice == "" {
		return nil, errNoSlips
	}
	return body.Slip, nil
}

// getJSON 不看 Content-Type（该 API 把 JSON 标成 text/html）
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("advice request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("advice api: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
