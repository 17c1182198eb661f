package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/internal/feature/dashboard"
	"heartbeat-insights/pkg/utils"
)

type DashboardRepo struct{ db *gorm.DB }

func NewDashboardRepo(db *gorm.DB) *DashboardRepo { return &DashboardRepo{db: db} }

var _ domain.DashboardRepository = (*DashboardRepo)(nil)

func (r *DashboardRepo) Create(ctx context.Context, d *domain.Dashboard) error {
	if d.ID == "" {
		d.ID = utils.NewID()
	}
	m := dashboard.FromDomain(d)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create dashboard: %w", err)
	}
	d.CreatedAt, d.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *DashboardRepo) FindByID(ctx context.Context, id string) (*domain.Dashboard, error) {
	var m dashboard.DashboardModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

func (r *DashboardRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Dashboard, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []dashboard.DashboardModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("find dashboards: %w", err)
	}
	return dashboardsToDomain(ms), nil
}

func (r *DashboardRepo) ListActive(ctx context.Context) ([]domain.Dashboard, error) {
	var ms []dashboard.DashboardModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at desc").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	return dashboardsToDomain(ms), nil
}

func (r *DashboardRepo) Update(ctx context.Context, d *domain.Dashboard) error {
	m := dashboard.FromDomain(d)
	res := r.db.WithContext(ctx).Model(&dashboard.DashboardModel{}).Where("id = ?", d.ID).
		Select("title", "description", "data", "cardiovascular_data", "is_active", "updated_at").
		Updates(m)
	if res.Error != nil {
		return fmt.Errorf("update dashboard: %w", res.Error)
	}
	return rowsOrMissing(ctx, r.db, res, &dashboard.DashboardModel{}, d.ID)
}

func (r *DashboardRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&dashboard.DashboardModel{})
	if res.Error != nil {
		return fmt.Errorf("delete dashboard: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DashboardRepo) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&dashboard.DashboardModel{}).
		Where("created_by = ?", from).
		Update("created_by", to)
	if res.Error != nil {
		return 0, fmt.Errorf("reassign dashboards: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func dashboardsToDomain(ms []dashboard.DashboardModel) []domain.Dashboard {
	out := make([]domain.Dashboard, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out
}
