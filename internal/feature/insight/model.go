package insight

import (
	"time"

	"heartbeat-insights/internal/domain"
)

type InsightModel struct {
	ID           string              `gorm:"primaryKey;type:varchar(36)"`
	Title        string              `gorm:"size:200;not null"`
	Content      string              `gorm:"type:text;not null"`
	Type         string              `gorm:"size:16;not null"`
	Priority     string              `gorm:"size:16;not null"`
	PriorityRank int                 `gorm:"not null;index:idx_insight_order,priority:2"`
	MedicalData  *domain.MedicalData `gorm:"serializer:json;type:text"`
	ActionItems  []domain.ActionItem `gorm:"serializer:json;type:text"`
	DashboardID  string              `gorm:"type:varchar(36);index"`
	CreatedBy    string              `gorm:"type:varchar(36);not null;index"`
	IsActive     bool                `gorm:"not null;index:idx_insight_order,priority:1"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_insight_order,priority:3"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (InsightModel) TableName() string { return "insights" }

func FromDomain(in *domain.Insight) *InsightModel {
	return &InsightModel{
		ID:           in.ID,
		Title:        in.Title,
		Content:      in.Content,
		Type:         string(in.Type),
		Priority:     string(in.Priority),
		PriorityRank: in.Priority.Rank(),
		MedicalData:  in.MedicalData,
		ActionItems:  in.ActionItems,
		DashboardID:  in.DashboardID,
		CreatedBy:    in.CreatedBy,
		IsActive:     in.IsActive,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
	}
}

func (m *InsightModel) ToDomain() *domain.Insight {
	return &domain.Insight{
		ID:          m.ID,
		Title:       m.Title,
		Content:     m.Content,
		Type:        domain.InsightType(m.Type),
		Priority:    domain.Priority(m.Priority),
		MedicalData: m.MedicalData,
		ActionItems: m.ActionItems,
		DashboardID: m.DashboardID,
		CreatedBy:   m.CreatedBy,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
