package domain

import (
	"context"
	"time"
)

type InsightType string

const (
	InsightAction     InsightType = "action"
	InsightWarning    InsightType = "warning"
	InsightInfo       InsightType = "info"
	InsightSuccess    InsightType = "success"
	InsightPrevention InsightType = "prevention"
	InsightMedical    InsightType = "medical"
)

func (t InsightType) Valid() bool {
	switch t {
	case InsightAction, InsightWarning, InsightInfo, InsightSuccess, InsightPrevention, InsightMedical:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityUrgent   Priority = "urgent"
	PriorityCritical Priority = "critical"
)

// Rank 按严重程度排序；0 表示未知
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	case PriorityCritical:
		return 5
	}
	return 0
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type Condition string

const (
	ConditionHypertension Condition = "hypertension"
	ConditionDiabetes     Condition = "diabetes"
	ConditionHeartDisease Condition = "heartDisease"
	ConditionStroke       Condition = "stroke"
	ConditionObesity      Condition = "obesity"
	ConditionGeneral      Condition = "general"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionHypertension, ConditionDiabetes, ConditionHeartDisease, ConditionStroke, ConditionObesity, ConditionGeneral:
		return true
	}
	return false
}

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

func (t Trend) Valid() bool {
	return t == TrendIncreasing || t == TrendDecreasing || t == TrendStable
}

type ActionCategory string

const (
	CategoryPrevention ActionCategory = "prevention"
	CategoryTreatment  ActionCategory = "treatment"
	CategoryMonitoring ActionCategory = "monitoring"
	CategoryEducation  ActionCategory = "education"
)

func (c ActionCategory) Valid() bool {
	switch c {
	case CategoryPrevention, CategoryTreatment, CategoryMonitoring, CategoryEducation:
		return true
	}
	return false
}

type MedicalData struct {
	Condition     Condition `json:"condition,omitempty" bson:"condition,omitempty"`
	AffectedGroup string    `json:"affectedGroup,omitempty" bson:"affectedGroup,omitempty"`
	Percentage    float64   `json:"percentage,omitempty" bson:"percentage,omitempty"`
	Trend         Trend     `json:"trend,omitempty" bson:"trend,omitempty"`
}

type ActionItem struct {
	Action      string         `json:"action" bson:"action"`
	Deadline    *time.Time     `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Responsible string         `json:"responsible,omitempty" bson:"responsible,omitempty"`
	Category    ActionCategory `json:"category,omitempty" bson:"category,omitempty"`
}

type Insight struct {
	ID          string       `json:"_id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Type        InsightType  `json:"type"`
	Priority    Priority     `json:"priority"`
	MedicalData *MedicalData `json:"medicalData,omitempty"`
	ActionItems []ActionItem `json:"actionItems,omitempty"`
	DashboardID string       `json:"dashboardId,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type InsightRepository interface {
	Create(ctx context.Context, in *Insight) error
	// 不区分是否启用
	FindByID(ctx context.Context, id string) (*Insight, error)
	// 仅启用的洞察：先按优先级严重程度，再按创建时间倒序
	ListActive(ctx context.Context) ([]Insight, error)
	Update(ctx context.Context, in *Insight) error
	// 软删：记录保留，IsActive=false
	Deactivate(ctx context.Context, id string) error
	ReassignOwner(ctx context.Context, from, to string) (int64, error)
}
