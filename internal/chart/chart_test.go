package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"heartbeat-insights/internal/domain"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`42`, 42},
		{`2.5`, 2.5},
		{`{"$numberInt":"42"}`, 42},
		{`{"$numberLong":"9000000000"}`, 9000000000},
		{`{"$numberDouble":"1.25"}`, 1.25},
		{`{"$numberDecimal":"3.5"}`, 3.5},
		{`"17"`, 17},
		{`"12.7"`, 12},
		{`"-3px"`, -3},
		{`"abc"`, 0},
		{`true`, 0},
		{`null`, 0},
		{`[1]`, 0},
		{`{"other":1}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(gjson.Parse(tc.in)))
		})
	}
}

func TestBuildNoData(t *testing.T) {
	for _, raw := range []string{
		``,
		`not json`,
		`[1,2]`,
		`{"labels":["a"],"values":[1]}`,
		`{"chartType":"bar","values":[]}`,
		`{"chartType":"bar"}`,
	} {
		_, err := Build(json.RawMessage(raw), "t")
		assert.ErrorIs(t, err, ErrNoData, raw)
	}
}

func TestBuildBar(t *testing.T) {
	cfg, err := Build(json.RawMessage(`{"chartType":"bar","labels":["Jan","Feb"],"values":[45,{"$numberInt":"52"}]}`), "Fallback")
	require.NoError(t, err)

	assert.Equal(t, TypeBar, cfg.Type)
	assert.Equal(t, "Fallback", cfg.Title)
	assert.Equal(t, []string{"Jan", "Feb"}, cfg.Data.Labels)
	assert.True(t, cfg.Options.Scales["y"].BeginAtZero)

	sets := cfg.Data.Datasets.([]Dataset)
	require.Len(t, sets, 1)
	assert.Equal(t, []float64{45, 52}, sets[0].Data)
	assert.Equal(t, defaultLabel, sets[0].Label)
	assert.Equal(t, Palette[0], sets[0].BackgroundColor)
	assert.Equal(t, "rgba(220, 38, 38, 1)", sets[0].BorderColor)
}

func TestBuildLineUsesTypeAndDataAliases(t *testing.T) {
	cfg, err := Build(json.RawMessage(`{"type":"line","title":"Trend","data":["1","2"]}`), "x")
	require.NoError(t, err)

	assert.Equal(t, TypeLine, cfg.Type)
	assert.Equal(t, "Trend", cfg.Title)
	ds := cfg.Data.Datasets.([]Dataset)[0]
	assert.Equal(t, "Trend", ds.Label)
	assert.Equal(t, 0.4, ds.Tension)
	require.NotNil(t, ds.Fill)
	assert.False(t, *ds.Fill)
	assert.Equal(t, 4, ds.PointRadius)
}

func TestBuildPieCyclesPaletteAndUnknownFallsBack(t *testing.T) {
	values := `[1,2,3,4,5,6,7]`
	for _, typ := range []string{"pie", "radar"} {
		cfg, err := Build(json.RawMessage(`{"chartType":"`+typ+`","values":`+values+`}`), "")
		require.NoError(t, err)
		assert.Equal(t, TypePie, cfg.Type)
		ds := cfg.Data.Datasets.([]Dataset)[0]
		colors := ds.BackgroundColor.([]string)
		require.Len(t, colors, 7)
		assert.Equal(t, Palette[0], colors[6])
		assert.Equal(t, "#fff", ds.BorderColor)
		assert.Nil(t, cfg.Options.Scales)
	}
}

func TestBuildScatterGroupsInFirstSeenOrder(t *testing.T) {
	raw := `{"chartType":"scatter","values":[
		{"x":1,"y":2,"group":"B"},
		{"x":"3","y":{"$numberInt":"4"}},
		{"x":5,"y":6,"group":"B"}
	]}`
	cfg, err := Build(json.RawMessage(raw), "")
	require.NoError(t, err)

	sets := cfg.Data.Datasets.([]Dataset)
	require.Len(t, sets, 2)
	assert.Equal(t, "B", sets[0].Label)
	assert.Equal(t, []Point{{1, 2}, {5, 6}}, sets[0].Data)
	assert.Equal(t, defaultLabel, sets[1].Label)
	assert.Equal(t, []Point{{3, 4}}, sets[1].Data)
	assert.Equal(t, Palette[1], sets[1].BackgroundColor)
	assert.Equal(t, "linear", cfg.Options.Scales["x"].Type)
}

func TestBuildScatterPassesDatasetsThrough(t *testing.T) {
	raw := `{"chartType":"scatter","values":[{"x":1,"y":1}],"datasets":[{"label":"mine","data":[{"x":0,"y":0}]}]}`
	cfg, err := Build(json.RawMessage(raw), "")
	require.NoError(t, err)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"label":"mine","data":[{"x":0,"y":0}]}]`, gjson.GetBytes(out, "data.datasets").Raw)
}

func TestFromCardiovascular(t *testing.T) {
	cv := &domain.CardiovascularData{
		TotalPatients: 1250,
		AgeGroups:     domain.AgeGroups{Under30: 180, Between30_50: 520, Above50: 550},
		Conditions:    domain.Conditions{Hypertension: 450, Diabetes: 280, HeartDisease: 125, Stroke: 85, Obesity: 375},
		RiskFactors:   domain.RiskFactors{Smoking: 225, Sedentary: 650, HighCholesterol: 400, FamilyHistory: 300},
		MonthlyTrends: []domain.MonthlyTrend{{Month: "Jan", NewCases: 45, Recoveries: 32}, {Month: "Feb", NewCases: 52, Recoveries: 38}},
	}
	out := FromCardiovascular(cv)
	require.NotNil(t, out)
	require.Len(t, out.Charts, 4)

	assert.Equal(t, []string{TypePie, TypeDoughnut, TypeBar, TypeLine},
		[]string{out.Charts[0].Type, out.Charts[1].Type, out.Charts[2].Type, out.Charts[3].Type})
	assert.Equal(t, 855.0, out.Summary[1].Value)
	assert.Equal(t, 52.0, out.Summary[2].Value)
	assert.Equal(t, 36.0, out.Summary[3].Value)

	trend := out.Charts[3].Data.Datasets.([]Dataset)
	require.Len(t, trend, 2)
	assert.Equal(t, []float64{45, 52}, trend[0].Data)
	assert.Equal(t, []float64{32, 38}, trend[1].Data)

	assert.Nil(t, FromCardiovascular(nil))
	zero := FromCardiovascular(&domain.CardiovascularData{})
	assert.Equal(t, 0.0, zero.Summary[2].Value)
}
