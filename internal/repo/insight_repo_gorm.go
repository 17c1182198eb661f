package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/internal/feature/insight"
	"heartbeat-insights/pkg/utils"
)

type InsightRepo struct{ db *gorm.DB }

func NewInsightRepo(db *gorm.DB) *InsightRepo { return &InsightRepo{db: db} }

var _ domain.InsightRepository = (*InsightRepo)(nil)

func (r *InsightRepo) Create(ctx context.Context, in *domain.Insight) error {
	if in.ID == "" {
		in.ID = utils.NewID()
	}
	m := insight.FromDomain(in)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create insight: %w", err)
	}
	in.CreatedAt, in.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *InsightRepo) FindByID(ctx context.Context, id string) (*domain.Insight, error) {
	var m insight.InsightModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

func (r *InsightRepo) ListActive(ctx context.Context) ([]domain.Insight, error) {
	var ms []insight.InsightModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority_rank desc").
		Order("created_at desc").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	out := make([]domain.Insight, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, nil
}

func (r *InsightRepo) Update(ctx context.Context, in *domain.Insight) error {
	m := insight.FromDomain(in)
	res := r.db.WithContext(ctx).Model(&insight.InsightModel{}).Where("id = ?", in.ID).
		Select("title", "content", "type", "priority", "priority_rank", "medical_data",
			"action_items", "dashboard_id", "is_active", "updated_at").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("update insight: %w", res.Error)
	}
	return rowsOrMissing(ctx, r.db, res, &insight.InsightModel{}, in.ID)
}

func (r *InsightRepo) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&insight.InsightModel{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate insight: %w", res.Error)
	}
	return rowsOrMissing(ctx, r.db, res, &insight.InsightModel{}, id)
}

func (r *InsightRepo) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&insight.InsightModel{}).
		Where("created_by = ?", from).
		Update("created_by", to)
	if res.Error != nil {
		return 0, fmt.Errorf("reassign insights: %w", res.Error)
	}
	return res.RowsAffected, nil
}
