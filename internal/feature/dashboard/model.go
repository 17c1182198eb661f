package dashboard

import (
	"encoding/json"
	"time"

	"heartbeat-insights/internal/domain"
)

// DashboardModel 图表描述按原始 JSON 文本存，客户端发什么就原样返回什么
type DashboardModel struct {
	ID                 string                     `gorm:"primaryKey;type:varchar(36)"`
	Title              string                     `gorm:"size:200;not null"`
	Description        string                     `gorm:"type:text"`
	Data               string                     `gorm:"type:text"`
	CardiovascularData *domain.CardiovascularData `gorm:"serializer:json;type:text"`
	IsActive           bool                       `gorm:"not null;index:idx_dash_active_created,priority:1"`
	CreatedBy          string                     `gorm:"type:varchar(36);not null;index"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_dash_active_created,priority:2"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (DashboardModel) TableName() string { return "dashboards" }

func FromDomain(d *domain.Dashboard) *DashboardModel {
	return &DashboardModel{
		ID:                 d.ID,
		Title:              d.Title,
		Description:        d.Description,
		Data:               string(d.Data),
		CardiovascularData: d.CardiovascularData,
		IsActive:           d.IsActive,
		CreatedBy:          d.CreatedBy,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (m *DashboardModel) ToDomain() *domain.Dashboard {
	d := &domain.Dashboard{
		ID:                 m.ID,
		Title:              m.Title,
		Description:        m.Description,
		CardiovascularData: m.CardiovascularData,
		IsActive:           m.IsActive,
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Data != "" && m.Data != "null" {
		d.Data = json.RawMessage(m.Data)
	}
	return d
}
