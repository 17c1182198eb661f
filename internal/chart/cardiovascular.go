package chart

import (
	"math"

	"heartbeat-insights/internal/domain"
)

type SummaryCard struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

type Cardiovascular struct {
	Summary []SummaryCard `json:"summary"`
	Charts  []Config      `json:"charts"`
}

func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part) / float64(total) * 100)
}

// FromCardiovascular 生成四张固定图表（年龄饼图、病种环形图、风险因素柱状图、
// 月度趋势折线图）以及汇总卡片
func FromCardiovascular(cv *domain.CardiovascularData) *Cardiovascular {
	if cv == nil {
		return nil
	}
	c := cv.Conditions
	r := cv.RiskFactors
	out := &Cardiovascular{
		Summary: []SummaryCard{
			{Label: "Total patients", Value: float64(cv.TotalPatients)},
			{Label: "With heart conditions", Value: float64(c.Hypertension + c.Diabetes + c.HeartDisease)},
			{Label: "Sedentary patients", Value: percent(r.Sedentary, cv.TotalPatients), Unit: "%"},
			{Label: "With hypertension", Value: percent(c.Hypertension, cv.TotalPatients), Unit: "%"},
		},
	}

	out.Charts = append(out.Charts, Config{
		Type:  TypePie,
		Title: "Age groups",
		Data: Data{
			Labels: []string{"Under 30", "30-50", "Over 50"},
			Datasets: []Dataset{{
				Data:            []float64{float64(cv.AgeGroups.Under30), float64(cv.AgeGroups.Between30_50), float64(cv.AgeGroups.Above50)},
				BackgroundColor: []string{"#3498db", "#f39c12", "#e74c3c"},
				BorderColor:     "#fff",
				BorderWidth:     2,
			}},
		},
		Options: baseOptions(),
	})

	out.Charts = append(out.Charts, Config{
		Type:  TypeDoughnut,
		Title: "Conditions",
		Data: Data{
			Labels: []string{"Hypertension", "Diabetes", "Heart disease", "Stroke", "Obesity"},
			Datasets: []Dataset{{
				Data:            []float64{float64(c.Hypertension), float64(c.Diabetes), float64(c.HeartDisease), float64(c.Stroke), float64(c.Obesity)},
				BackgroundColor: []string{"#e74c3c", "#f39c12", "#9b59b6", "#34495e", "#1abc9c"},
				BorderColor:     "#fff",
				BorderWidth:     2,
			}},
		},
		Options: baseOptions(),
	})

	risk := baseOptions()
	risk.Scales = map[string]Axis{"y": {BeginAtZero: true}}
	out.Charts = append(out.Charts, Config{
		Type:  TypeBar,
		Title: "Risk factors",
		Data: Data{
			Labels: []string{"Smoking", "Sedentary", "High cholesterol", "Family history"},
			Datasets: []Dataset{{
				Label:           "Patients",
				Data:            []float64{float64(r.Smoking), float64(r.Sedentary), float64(r.HighCholesterol), float64(r.FamilyHistory)},
				BackgroundColor: []string{"#e67e22", "#e74c3c", "#f39c12", "#9b59b6"},
				BorderWidth:     1,
			}},
		},
		Options: risk,
	})

	months := make([]string, 0, len(cv.MonthlyTrends))
	newCases := make([]float64, 0, len(cv.MonthlyTrends))
	recoveries := make([]float64, 0, len(cv.MonthlyTrends))
	for _, m := range cv.MonthlyTrends {
		months = append(months, m.Month)
		newCases = append(newCases, float64(m.NewCases))
		recoveries = append(recoveries, float64(m.Recoveries))
	}
	fill := true
	trend := baseOptions()
	trend.Scales = map[string]Axis{"y": {BeginAtZero: true}}
	out.Charts = append(out.Charts, Config{
		Type:  TypeLine,
		Title: "Monthly trends",
		Data: Data{
			Labels: months,
			Datasets: []Dataset{
				{Label: "New cases", Data: newCases, BorderColor: "#e74c3c", BackgroundColor: "rgba(231, 76, 60, 0.1)", Fill: &fill},
				{Label: "Recoveries", Data: recoveries, BorderColor: "#27ae60", BackgroundColor: "rgba(39, 174, 96, 0.1)", Fill: &fill},
			},
		},
		Options: trend,
	})
	return out
}
