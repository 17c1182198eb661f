package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/pkg/utils"
)

type DashboardsRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Dashboard
}

func NewDashboardsRepo() *DashboardsRepo {
	return &DashboardsRepo{items: make(map[string]domain.Dashboard)}
}

var _ domain.DashboardRepository = (*DashboardsRepo)(nil)

// cloneDashboard 深拷贝原始数据和汇总，和调用方的副本脱钩
func cloneDashboard(d domain.Dashboard) domain.Dashboard {
	if d.Data != nil {
		d.Data = append(json.RawMessage(nil), d.Data...)
	}
	if d.CardiovascularData != nil {
		cv := *d.CardiovascularData
		cv.MonthlyTrends = append([]domain.MonthlyTrend(nil), cv.MonthlyTrends...)
		d.CardiovascularData = &cv
	}
	return d
}

func (r *DashboardsRepo) Create(_ context.Context, d *domain.Dashboard) error {
	if d.ID == "" {
		d.ID = utils.NewID()
	}
	r.mu.Lock()
	r.items[d.ID] = cloneDashboard(*d)
	r.mu.Unlock()
	return nil
}

func (r *DashboardsRepo) FindByID(_ context.Context, id string) (*domain.Dashboard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	d = cloneDashboard(d)
	return &d, nil
}

func (r *DashboardsRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Dashboard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Dashboard, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.items[id]; ok {
			out = append(out, cloneDashboard(d))
		}
	}
	return out, nil
}

func (r *DashboardsRepo) ListActive(_ context.Context) ([]domain.Dashboard, error) {
	r.mu.RLock()
	out := make([]domain.Dashboard, 0, len(r.items))
	for _, d := range r.items {
		if d.IsActive {
			out = append(out, cloneDashboard(d))
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *DashboardsRepo) Update(_ context.Context, d *domain.Dashboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[d.ID]; !ok {
		return domain.ErrNotFound
	}
	r.items[d.ID] = cloneDashboard(*d)
	return nil
}

func (r *DashboardsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *DashboardsRepo) ReassignOwner(_ context.Context, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, d := range r.items {
		if d.CreatedBy == from {
			d.CreatedBy = to
			r.items[id] = d
			n++
		}
	}
	return n, nil
}
