package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"heartbeat-insights/internal/domain"
)

type SampleService struct {
	dashboards *DashboardService
	insights   *InsightService
	log        *zap.Logger
	now        func() time.Time
}

func NewSampleService(dashboards *DashboardService, insights *InsightService, log *zap.Logger) *SampleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SampleService{dashboards: dashboards, insights: insights, log: log, now: time.Now}
}

type SampleSummary struct {
	TotalPatients  int               `json:"totalPatients"`
	MainConditions map[string]string `json:"mainConditions"`
	Recommendation string            `json:"recommendation"`
}

type SampleResult struct {
	Dashboard *DashboardView `json:"dashboard"`
	Insights  []InsightView  `json:"insights"`
	Summary   SampleSummary  `json:"summary"`
}

// SampleCardiovascular 示例仪表盘携带的医院汇总数据
func SampleCardiovascular() *domain.CardiovascularData {
	return &domain.CardiovascularData{
		TotalPatients: 1250,
		AgeGroups:     domain.AgeGroups{Under30: 180, Between30_50: 520, Above50: 550},
		Conditions:    domain.Conditions{Hypertension: 450, Diabetes: 280, HeartDisease: 125, Stroke: 85, Obesity: 375},
		RiskFactors:   domain.RiskFactors{Smoking: 225, Sedentary: 650, HighCholesterol: 400, FamilyHistory: 300},
		MonthlyTrends: []domain.MonthlyTrend{
			{Month: "Jan", NewCases: 45, Recoveries: 32},
			{Month: "Feb", NewCases: 52, Recoveries: 38},
			{Month: "Mar", NewCases: 48, Recoveries: 41},
			{Month: "Apr", NewCases: 65, Recoveries: 35},
			{Month: "May", NewCases: 58, Recoveries: 42},
			{Month: "Jun", NewCases: 71, Recoveries: 39},
		},
	}
}

// Generate 写入示例仪表盘及两条关联洞察
func (s *SampleService) Generate(ctx context.Context, actor *domain.User) (*SampleResult, error) {
	cv := SampleCardiovascular()
	dash, err := s.dashboards.Create(ctx, actor, DashboardInput{
		Title:              "Cardiovascular Dashboard - Central Hospital",
		Description:        "Analysis of cardiovascular conditions across patients",
		CardiovascularData: cv,
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	in := func(days int) *time.Time {
		t := now.Add(time.Duration(days) * 24 * time.Hour).Truncate(time.Millisecond)
		return &t
	}
	hypertension, err := s.insights.Create(ctx, actor, InsightInput{
		Title:    "High hypertension rate among older patients",
		Content:  "Patients over 50 account for 82% of hypertension cases. Prevention campaigns need to be stepped up.",
		Type:     domain.InsightWarning,
		Priority: domain.PriorityHigh,
		MedicalData: &domain.MedicalData{
			Condition:     domain.ConditionHypertension,
			AffectedGroup: "Patients over 50",
			Percentage:    82,
			Trend:         domain.TrendIncreasing,
		},
		ActionItems: []domain.ActionItem{
			{Action: "Roll out a home blood-pressure monitoring program", Deadline: in(30), Responsible: "Cardiology team", Category: domain.CategoryPrevention},
			{Action: "Run hypertension awareness campaigns", Deadline: in(15), Responsible: "Hospital communications", Category: domain.CategoryEducation},
		},
		DashboardID: dash.ID,
	})
	if err != nil {
		return nil, err
	}
	sedentary, err := s.insights.Create(ctx, actor, InsightInput{
		Title:    "Critical sedentarism - act now",
		Content:  "52% of patients lead a sedentary lifestyle, the leading cardiovascular risk factor.",
		Type:     domain.InsightPrevention,
		Priority: domain.PriorityUrgent,
		MedicalData: &domain.MedicalData{
			Condition:     domain.ConditionGeneral,
			AffectedGroup: "Patients of all ages",
			Percentage:    52,
			Trend:         domain.TrendIncreasing,
		},
		ActionItems: []domain.ActionItem{
			{Action: "Supervised exercise program", Deadline: in(20), Responsible: "Physiotherapy", Category: domain.CategoryTreatment},
		},
		DashboardID: dash.ID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sample dashboard generated", zap.String("dashboard_id", dash.ID))
	return &SampleResult{
		Dashboard: dash,
		Insights:  []InsightView{*hypertension, *sedentary},
		Summary: SampleSummary{
			TotalPatients: cv.TotalPatients,
			MainConditions: map[string]string{
				"hypertension": "36%",
				"sedentarism":  "52%",
				"obesity":      "30%",
			},
			Recommendation: "Focus prevention on patients over 50",
		},
	}, nil
}
