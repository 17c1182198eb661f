package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"heartbeat-insights/internal/domain"
)

type InsightService struct {
	insights   domain.InsightRepository
	dashboards domain.DashboardRepository
	users      domain.UserRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewInsightService(insights domain.InsightRepository, dashboards domain.DashboardRepository,
	users domain.UserRepository, log *zap.Logger) *InsightService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InsightService{insights: insights, dashboards: dashboards, users: users, log: log, now: time.Now}
}

type InsightInput struct {
	Title       string
	Content     string
	Type        domain.InsightType
	Priority    domain.Priority
	MedicalData *domain.MedicalData
	ActionItems []domain.ActionItem
	DashboardID string
}

type InsightPatch struct {
	Title       *string
	Content     *string
	Type        *domain.InsightType
	Priority    *domain.Priority
	MedicalData *domain.MedicalData
	ActionItems *[]domain.ActionItem
	DashboardID *string
	IsActive    *bool
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidInput}, args...)...)
}

func validateMedical(md *domain.MedicalData) error {
	if md == nil {
		return nil
	}
	if md.Condition != "" && !md.Condition.Valid() {
		return invalid("unknown medicalData.condition %q", md.Condition)
	}
	if md.Trend != "" && !md.Trend.Valid() {
		return invalid("unknown medicalData.trend %q", md.Trend)
	}
	if md.Percentage < 0 || md.Percentage > 100 {
		return invalid("medicalData.percentage must be between 0 and 100")
	}
	return nil
}

func validateActions(items []domain.ActionItem) error {
	for i, a := range items {
		if strings.TrimSpace(a.Action) == "" {
			return invalid("actionItems[%d].action is required", i)
		}
		if a.Category != "" && !a.Category.Valid() {
			return invalid("unknown actionItems[%d].category %q", i, a.Category)
		}
	}
	return nil
}

// checkDashboard 关联的仪表盘必须存在
func (s *InsightService) checkDashboard(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.dashboards.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return invalid("dashboard %s does not exist", id)
		}
		return err
	}
	return nil
}

func (s *InsightService) Create(ctx context.Context, actor *domain.User, in InsightInput) (*InsightView, error) {
	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, invalid("title and content are required")
	}
	typ := in.Type
	if typ == "" {
		typ = domain.InsightInfo
	}
	if !typ.Valid() {
		return nil, invalid("unknown type %q", typ)
	}
	prio := in.Priority
	if prio == "" {
		prio = domain.PriorityMedium
	}
	if !prio.Valid() {
		return nil, invalid("unknown priority %q", prio)
	}
	if err := validateMedical(in.MedicalData); err != nil {
		return nil, err
	}
	if err := validateActions(in.ActionItems); err != nil {
		return nil, err
	}
	if err := s.checkDashboard(ctx, in.DashboardID); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	ins := &domain.Insight{
		Title:       title,
		Content:     content,
		Type:        typ,
		Priority:    prio,
		MedicalData: in.MedicalData,
		ActionItems: in.ActionItems,
		DashboardID: in.DashboardID,
		CreatedBy:   actor.ID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.insights.Create(ctx, ins); err != nil {
		return nil, err
	}
	s.log.Info("insight created", zap.String("insight_id", ins.ID), zap.String("priority", string(prio)))
	views, err := s.populate(ctx, []domain.Insight{*ins})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *InsightService) List(ctx context.Context) ([]InsightView, error) {
	list, err := s.insights.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, list)
}

// Get 软删的洞察按 ErrNotFound 处理
func (s *InsightService) Get(ctx context.Context, id string) (*InsightView, error) {
	in, err := s.insights.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !in.IsActive {
		return nil, domain.ErrNotFound
	}
	views, err := s.populate(ctx, []domain.Insight{*in})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *InsightService) Update(ctx context.Context, id string, p InsightPatch) (*InsightView, error) {
	in, err := s.insights.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		if in.Title = strings.TrimSpace(*p.Title); in.Title == "" {
			return nil, invalid("title cannot be empty")
		}
	}
	if p.Content != nil {
		if in.Content = strings.TrimSpace(*p.Content); in.Content == "" {
			return nil, invalid("content cannot be empty")
		}
	}
	if p.Type != nil {
		if !p.Type.Valid() {
			return nil, invalid("unknown type %q", *p.Type)
		}
		in.Type = *p.Type
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return nil, invalid("unknown priority %q", *p.Priority)
		}
		in.Priority = *p.Priority
	}
	if p.MedicalData != nil {
		if err := validateMedical(p.MedicalData); err != nil {
			return nil, err
		}
		in.MedicalData = p.MedicalData
	}
	if p.ActionItems != nil {
		if err := validateActions(*p.ActionItems); err != nil {
			return nil, err
		}
		in.ActionItems = *p.ActionItems
	}
	if p.DashboardID != nil {
		if err := s.checkDashboard(ctx, *p.DashboardID); err != nil {
			return nil, err
		}
		in.DashboardID = *p.DashboardID
	}
	if p.IsActive != nil {
		in.IsActive = *p.IsActive
	}
	in.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.insights.Update(ctx, in); err != nil {
		return nil, err
	}
	views, err := s.populate(ctx, []domain.Insight{*in})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete 软删（记录保留）
func (s *InsightService) Delete(ctx context.Context, id string) error {
	if err := s.insights.Deactivate(ctx, id); err != nil {
		return err
	}
	s.log.Info("insight deactivated", zap.String("insight_id", id))
	return nil
}

func (s *InsightService) populate(ctx context.Context, list []domain.Insight) ([]InsightView, error) {
	ownerIDs := make([]string, 0, len(list))
	dashIDs := make([]string, 0, len(list))
	for _, in := range list {
		ownerIDs = append(ownerIDs, in.CreatedBy)
		if in.DashboardID != "" {
			dashIDs = append(dashIDs, in.DashboardID)
		}
	}
	owners, err := userRefs(ctx, s.users, ownerIDs)
	if err != nil {
		return nil, err
	}
	dashes := map[string]*DashboardRef{}
	if len(dashIDs) > 0 {
		found, err := s.dashboards.FindByIDs(ctx, uniq(dashIDs))
		if err != nil {
			return nil, err
		}
		for _, d := range found {
			dashes[d.ID] = &DashboardRef{ID: d.ID, Title: d.Title}
		}
	}
	out := make([]InsightView, 0, len(list))
	for _, in := range list {
		out = append(out, InsightView{Insight: in, CreatedBy: owners[in.CreatedBy], Dashboard: dashes[in.DashboardID]})
	}
	return out, nil
}
