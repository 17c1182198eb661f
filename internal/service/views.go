package service

import (
	"context"

	"heartbeat-insights/internal/domain"
)

// UserRef 填充后的归属人（仅 id 和 name）
type UserRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type DashboardRef struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// DashboardView 用填充后的归属人覆盖 CreatedBy 字段
type DashboardView struct {
	domain.Dashboard
	CreatedBy *UserRef `json:"createdBy"`
}

type InsightView struct {
	domain.Insight
	CreatedBy *UserRef      `json:"createdBy"`
	Dashboard *DashboardRef `json:"dashboard,omitempty"`
}

// userRefs 一次查询批量加载用户；查不到的 id 也给一个只带 id 的 ref，视图不丢归属字段
func userRefs(ctx context.Context, users domain.UserRepository, ids []string) (map[string]*UserRef, error) {
	refs := make(map[string]*UserRef, len(ids))
	found, err := users.FindByIDs(ctx, uniq(ids))
	if err != nil {
		return nil, err
	}
	for _, u := range found {
		refs[u.ID] = &UserRef{ID: u.ID, Name: u.Name}
	}
	for _, id := range ids {
		if _, ok := refs[id]; !ok && id != "" {
			refs[id] = &UserRef{ID: id}
		}
	}
	return refs, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
