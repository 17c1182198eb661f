// Package chart 把仪表盘数据转换成 Chart.js 配置：
// 自由格式的图表描述走 Build，结构化心血管汇总走 FromCardiovascular
package chart

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrNoData = errors.New("chart: no data to display")

const (
	TypePie      = "pie"
	TypeDoughnut = "doughnut"
	TypeBar      = "bar"
	TypeLine     = "line"
	TypeScatter  = "scatter"
)

// Palette 按下标循环取色（扇区 / 序列 / 散点分组共用）
var Palette = []string{
	"rgba(220, 38, 38, 0.8)",
	"rgba(34, 197, 94, 0.8)",
	"rgba(59, 130, 246, 0.8)",
	"rgba(251, 146, 60, 0.8)",
	"rgba(168, 85, 247, 0.8)",
	"rgba(14, 165, 233, 0.8)",
}

const defaultLabel = "Data"

func color(i int) string { return Palette[i%len(Palette)] }

// solid 去掉透明度，用于边框和散点
func solid(c string) string { return strings.Replace(c, "0.8)", "1)", 1) }

type Config struct {
	Type    string  `json:"type"`
	Title   string  `json:"title,omitempty"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels []string `json:"labels,omitempty"`
	// []Dataset，或客户端自带的散点 datasets（json.RawMessage 原样透传）
	Datasets any `json:"datasets"`
}

type Dataset struct {
	Label                string  `json:"label,omitempty"`
	Data                 any     `json:"data"`
	BackgroundColor      any     `json:"backgroundColor,omitempty"`
	BorderColor          string  `json:"borderColor,omitempty"`
	BorderWidth          int     `json:"borderWidth,omitempty"`
	Tension              float64 `json:"tension,omitempty"`
	Fill                 *bool   `json:"fill,omitempty"`
	PointRadius          int     `json:"pointRadius,omitempty"`
	PointBackgroundColor string  `json:"pointBackgroundColor,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Legend struct {
	Position string `json:"position"`
}

type Plugins struct {
	Legend Legend `json:"legend"`
}

type AxisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Axis struct {
	Type        string     `json:"type,omitempty"`
	BeginAtZero bool       `json:"beginAtZero,omitempty"`
	Title       *AxisTitle `json:"title,omitempty"`
}

type Options struct {
	Responsive          bool            `json:"responsive"`
	MaintainAspectRatio bool            `json:"maintainAspectRatio"`
	Plugins             Plugins         `json:"plugins"`
	Scales              map[string]Axis `json:"scales,omitempty"`
}

func baseOptions() Options {
	return Options{Responsive: true, Plugins: Plugins{Legend: Legend{Position: "bottom"}}}
}

// Build 渲染自由格式图表：类型取 chartType（兼容 type），数据取 values（兼容 data）；
// 描述里没有 title 时用 fallbackTitle
func Build(raw json.RawMessage, fallbackTitle string) (*Config, error) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil, ErrNoData
	}
	spec := gjson.ParseBytes(raw)
	if !spec.IsObject() {
		return nil, ErrNoData
	}

	chartType := spec.Get("chartType").String()
	if chartType == "" {
		chartType = spec.Get("type").String()
	}
	values := spec.Get("values")
	if !values.Exists() || values.Type == gjson.Null {
		values = spec.Get("data")
	}
	if chartType == "" || !values.IsArray() || len(values.Array()) == 0 {
		return nil, ErrNoData
	}

	title := spec.Get("title").String()
	if title == "" {
		title = fallbackTitle
	}

	if chartType == TypeScatter {
		return buildScatter(spec, values, title), nil
	}

	var labels []string
	for _, l := range spec.Get("labels").Array() {
		labels = append(labels, l.String())
	}
	nums := make([]float64, 0, len(values.Array()))
	for _, v := range values.Array() {
		nums = append(nums, Normalize(v))
	}

	label := spec.Get("title").String()
	if label == "" {
		label = defaultLabel
	}
	ds := Dataset{Label: label, Data: nums, BorderWidth: 2}
	cfg := &Config{Title: title, Data: Data{Labels: labels}, Options: baseOptions()}

	switch chartType {
	case TypeBar, TypeLine:
		cfg.Type = chartType
		ds.BackgroundColor = Palette[0]
		ds.BorderColor = solid(Palette[0])
		cfg.Options.Scales = map[string]Axis{"y": {BeginAtZero: true}, "x": {}}
		if chartType == TypeLine {
			noFill := false
			ds.Tension = 0.4
			ds.Fill = &noFill
			ds.PointRadius = 4
			ds.PointBackgroundColor = solid(Palette[0])
		}
	case TypeDoughnut:
		cfg.Type = TypeDoughnut
		ds.BackgroundColor = sliceColors(len(nums))
		ds.BorderColor = "#fff"
	default:
		// pie，以及前端不认识的类型
		cfg.Type = TypePie
		ds.BackgroundColor = sliceColors(len(nums))
		ds.BorderColor = "#fff"
	}
	cfg.Data.Datasets = []Dataset{ds}
	return cfg, nil
}

func sliceColors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = color(i)
	}
	return out
}

func buildScatter(spec, values gjson.Result, title string) *Config {
	cfg := &Config{Type: TypeScatter, Title: title, Options: baseOptions()}
	cfg.Options.Scales = map[string]Axis{
		"x": {Type: "linear", Title: &AxisTitle{Display: true, Text: "X"}},
		"y": {Title: &AxisTitle{Display: true, Text: "Y"}},
	}
	if ds := spec.Get("datasets"); ds.Exists() && ds.Type != gjson.Null {
		cfg.Data.Datasets = json.RawMessage(ds.Raw)
		return cfg
	}

	var order []string
	groups := map[string][]Point{}
	for _, v := range values.Array() {
		g := v.Get("group").String()
		if g == "" {
			g = defaultLabel
		}
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], Point{X: Normalize(v.Get("x")), Y: Normalize(v.Get("y"))})
	}
	sets := make([]Dataset, 0, len(order))
	for i, g := range order {
		sets = append(sets, Dataset{
			Label:           g,
			Data:            groups[g],
			BackgroundColor: color(i),
			BorderColor:     solid(color(i)),
		})
	}
	cfg.Data.Datasets = sets
	return cfg
}

// Normalize 把存储值转成数字：数字原样返回；extended JSON 包装
// （{"$numberInt": "42"} 等）拆包；字符串取整数前缀；其余为 0
func Normalize(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		return parseIntPrefix(v.Str)
	case gjson.JSON:
		if !v.IsObject() {
			return 0
		}
		for _, k := range []string{"$numberInt", "$numberLong"} {
			if w := v.Get(gjson.Escape(k)); w.Exists() {
				return parseIntPrefix(w.String())
			}
		}
		for _, k := range []string{"$numberDouble", "$numberDecimal"} {
			if w := v.Get(gjson.Escape(k)); w.Exists() {
				f, err := strconv.ParseFloat(strings.TrimSpace(w.String()), 64)
				if err != nil {
					return 0
				}
				return f
			}
		}
	}
	return 0
}

// parseIntPrefix 读可选符号 + 前导数字，后面的忽略："12.7" → 12，"40kg" → 40
func parseIntPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return n
}
