package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"heartbeat-insights/internal/chart"
	"heartbeat-insights/internal/domain"
)

type DashboardService struct {
	dashboards domain.DashboardRepository
	users      domain.UserRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewDashboardService(dashboards domain.DashboardRepository, users domain.UserRepository, log *zap.Logger) *DashboardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DashboardService{dashboards: dashboards, users: users, log: log, now: time.Now}
}

type DashboardInput struct {
	Title              string
	Description        string
	Data               json.RawMessage
	CardiovascularData *domain.CardiovascularData
}

// DashboardPatch 部分更新：nil 字段不动；Data 为 JSON null 时清空图表描述
type DashboardPatch struct {
	Title              *string
	Description        *string
	Data               json.RawMessage
	CardiovascularData *domain.CardiovascularData
	IsActive           *bool
}

func isNullJSON(raw json.RawMessage) bool { return strings.TrimSpace(string(raw)) == "null" }

func checkChartData(raw json.RawMessage) error {
	if len(raw) == 0 || isNullJSON(raw) {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("%w: data must be a JSON object", domain.ErrInvalidInput)
	}
	return nil
}

func (s *DashboardService) Create(ctx context.Context, actor *domain.User, in DashboardInput) (*DashboardView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if err := checkChartData(in.Data); err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	d := &domain.Dashboard{
		Title:              title,
		Description:        in.Description,
		CardiovascularData: in.CardiovascularData,
		IsActive:           true,
		CreatedBy:          actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if !isNullJSON(in.Data) {
		d.Data = in.Data
	}
	if err := s.dashboards.Create(ctx, d); err != nil {
		return nil, err
	}
	s.log.Info("dashboard created", zap.String("dashboard_id", d.ID), zap.String("by", actor.ID))
	return &DashboardView{Dashboard: *d, CreatedBy: &UserRef{ID: actor.ID, Name: actor.Name}}, nil
}

func (s *DashboardService) List(ctx context.Context) ([]DashboardView, error) {
	ds, err := s.dashboards.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, ds)
}

// Get 不区分是否启用
func (s *DashboardService) Get(ctx context.Context, id string) (*DashboardView, error) {
	d, err := s.dashboards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.populate(ctx, []domain.Dashboard{*d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *DashboardService) Update(ctx context.Context, id string, p DashboardPatch) (*DashboardView, error) {
	d, err := s.dashboards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		d.Title = title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Data != nil {
		if err := checkChartData(p.Data); err != nil {
			return nil, err
		}
		if isNullJSON(p.Data) {
			d.Data = nil
		} else {
			d.Data = p.Data
		}
	}
	if p.CardiovascularData != nil {
		d.CardiovascularData = p.CardiovascularData
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
	d.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.dashboards.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *DashboardService) Delete(ctx context.Context, id string) error {
	if err := s.dashboards.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("dashboard deleted", zap.String("dashboard_id", id))
	return nil
}

type DashboardCharts struct {
	DashboardID string              `json:"dashboardId"`
	Title       string              `json:"title"`
	Charts      []chart.Config      `json:"charts"`
	Summary     []chart.SummaryCard `json:"summary,omitempty"`
}

// Charts 渲染仪表盘能画的全部图表；没有可画内容时返回空列表而不是错误
func (s *DashboardService) Charts(ctx context.Context, id string) (*DashboardCharts, error) {
	d, err := s.dashboards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &DashboardCharts{DashboardID: d.ID, Title: d.Title, Charts: []chart.Config{}}
	if len(d.Data) > 0 {
		if cfg, err := chart.Build(d.Data, d.Title); err == nil {
			out.Charts = append(out.Charts, *cfg)
		} else {
			s.log.Debug("dashboard data not drawable", zap.String("dashboard_id", d.ID), zap.Error(err))
		}
	}
	if cv := chart.FromCardiovascular(d.CardiovascularData); cv != nil {
		out.Charts = append(out.Charts, cv.Charts...)
		out.Summary = cv.Summary
	}
	return out, nil
}

func (s *DashboardService) populate(ctx context.Context, ds []domain.Dashboard) ([]DashboardView, error) {
	ids := make([]string, 0, len(ds))
	for _, d := range ds {
		ids = append(ids, d.CreatedBy)
	}
	refs, err := userRefs(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]DashboardView, 0, len(ds))
	for _, d := range ds {
		out = append(out, DashboardView{Dashboard: d, CreatedBy: refs[d.CreatedBy]})
	}
	return out, nil
}
