package memory

import (
	"context"
	"sort"
	"sync"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/pkg/utils"
)

type InsightsRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Insight
}

func NewInsightsRepo() *InsightsRepo {
	return &InsightsRepo{items: make(map[string]domain.Insight)}
}

var _ domain.InsightRepository = (*InsightsRepo)(nil)

func cloneInsight(in domain.Insight) domain.Insight {
	if in.MedicalData != nil {
		md := *in.MedicalData
		in.MedicalData = &md
	}
	if in.ActionItems != nil {
		in.ActionItems = append([]domain.ActionItem(nil), in.ActionItems...)
	}
	return in
}

func (r *InsightsRepo) Create(_ context.Context, in *domain.Insight) error {
	if in.ID == "" {
		in.ID = utils.NewID()
	}
	r.mu.Lock()
	r.items[in.ID] = cloneInsight(*in)
	r.mu.Unlock()
	return nil
}

func (r *InsightsRepo) FindByID(_ context.Context, id string) (*domain.Insight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	in = cloneInsight(in)
	return &in, nil
}

func (r *InsightsRepo) ListActive(_ context.Context) ([]domain.Insight, error) {
	r.mu.RLock()
	out := make([]domain.Insight, 0, len(r.items))
	for _, in := range r.items {
		if in.IsActive {
			out = append(out, cloneInsight(in))
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InsightsRepo) Update(_ context.Context, in *domain.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[in.ID]; !ok {
		return domain.ErrNotFound
	}
	r.items[in.ID] = cloneInsight(*in)
	return nil
}

func (r *InsightsRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	in.IsActive = false
	r.items[id] = in
	return nil
}

func (r *InsightsRepo) ReassignOwner(_ context.Context, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, in := range r.items {
		if in.CreatedBy == from {
			in.CreatedBy = to
			r.items[id] = in
			n++
		}
	}
	return n, nil
}

// Len 存储中的洞察总数（含软删）
func (r *InsightsRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
