package domain

import (
	"context"
	"encoding/json"
	"time"
)

type AgeGroups struct {
	Under30      int `json:"under30" bson:"under30"`
	Between30_50 int `json:"between30_50" bson:"between30_50"`
	Above50      int `json:"above50" bson:"above50"`
}

type Conditions struct {
	Hypertension int `json:"hypertension" bson:"hypertension"`
	Diabetes     int `json:"diabetes" bson:"diabetes"`
	HeartDisease int `json:"heartDisease" bson:"heartDisease"`
	Stroke       int `json:"stroke" bson:"stroke"`
	Obesity      int `json:"obesity" bson:"obesity"`
}

type RiskFactors struct {
	Smoking         int `json:"smoking" bson:"smoking"`
	Sedentary       int `json:"sedentary" bson:"sedentary"`
	HighCholesterol int `json:"highCholesterol" bson:"highCholesterol"`
	FamilyHistory   int `json:"familyHistory" bson:"familyHistory"`
}

type MonthlyTrend struct {
	Month      string `json:"month" bson:"month"`
	NewCases   int    `json:"newCases" bson:"newCases"`
	Recoveries int    `json:"recoveries" bson:"recoveries"`
}

// CardiovascularData 结构化的心血管汇总数据（可替代或并存于自由格式图表描述）
type CardiovascularData struct {
	TotalPatients int            `json:"totalPatients" bson:"totalPatients"`
	AgeGroups     AgeGroups      `json:"ageGroups" bson:"ageGroups"`
	Conditions    Conditions     `json:"conditions" bson:"conditions"`
	RiskFactors   RiskFactors    `json:"riskFactors" bson:"riskFactors"`
	MonthlyTrends []MonthlyTrend `json:"monthlyTrends" bson:"monthlyTrends"`
}

type Dashboard struct {
	ID                 string              `json:"_id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Data               json.RawMessage     `json:"data,omitempty"`
	CardiovascularData *CardiovascularData `json:"cardiovascularData,omitempty"`
	IsActive           bool                `json:"isActive"`
	CreatedBy          string              `json:"createdBy"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

type DashboardRepository interface {
	Create(ctx context.Context, d *Dashboard) error
	FindByID(ctx context.Context, id string) (*Dashboard, error)
	FindByIDs(ctx context.Context, ids []string) ([]Dashboard, error)
	// 仅启用的仪表盘，按创建时间倒序
	ListActive(ctx context.Context) ([]Dashboard, error)
	Update(ctx context.Context, d *Dashboard) error
	Delete(ctx context.Context, id string) error
	ReassignOwner(ctx context.Context, from, to string) (int64, error)
}
