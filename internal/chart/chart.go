// Package chart renders the price-tier preview as an inline SVG bar chart.
package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	"github.com/shopspring/decimal"

	"github.com/vbonduro/venueadmin/internal/domain"
)

// Config describes how a BarChart is drawn.
type Config struct {
	Width        int
	Height       int
	BarThickness int
	Color        string
	AxisTitle    string
	Labels       [5]string
	// GridLines is the target number of y-axis intervals.
	GridLines int
}

func DefaultConfig() Config {
	return Config{
		Width:        520,
		Height:       300,
		BarThickness: 40,
		Color:        "#F0C3F1",
		AxisTitle:    "Price (₹)",
		Labels:       [5]string{"Custom", "Category1", "Category2", "Category3", "Category4"},
		GridLines:    5,
	}
}

// MaxValue is the largest amount the chart scales to.
const MaxValue = 1e12

// Plot-area margins in pixels.
const (
	marginLeft   = 56
	marginRight  = 12
	marginTop    = 12
	marginBottom = 32
)

type Bar struct {
	Label   string
	Value   float64
	X       float64
	Y       float64
	Width   float64
	Height  float64
	CenterX float64
}

type Tick struct {
	Value float64
	Y     float64
}

// Projection is everything needed to draw one chart.
type Projection struct {
	Config
	Bars  []Bar
	Ticks []Tick
	PlotX float64
	PlotY float64
	PlotW float64
	PlotH float64
	YMax  float64

	// Derived positions for axis text.
	PlotRight  float64
	TickLabelX float64
	LabelY     float64
	TitleY     float64
}

type BarChart struct {
	cfg  Config
	tmpl *template.Template
}

// New builds a chart drawer with the given configuration. Zero-valued fields
// fall back to DefaultConfig.
func New(cfg Config) *BarChart {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.BarThickness <= 0 {
		cfg.BarThickness = def.BarThickness
	}
	if cfg.Color == "" {
		cfg.Color = def.Color
	}
	if cfg.GridLines <= 0 {
		cfg.GridLines = def.GridLines
	}
	if cfg.Labels == ([5]string{}) {
		cfg.Labels = def.Labels
	}
	return &BarChart{
		cfg:  cfg,
		tmpl: template.Must(template.New("chart").Funcs(template.FuncMap{"num": formatNum}).Parse(svgTemplate)),
	}
}

func (c *BarChart) Config() Config { return c.cfg }

// Project lays out bars for the tiers: Custom first, then the four regular
// tiers. Negative and NaN amounts are drawn as zero; amounts above
// MaxValue are drawn at MaxValue.
func (c *BarChart) Project(t domain.Tiers) Projection {
	values := [5]float64{t.Custom, t.Regular[0], t.Regular[1], t.Regular[2], t.Regular[3]}
	maxV := 0.0
	for i, v := range values {
		if math.IsNaN(v) || v < 0 {
			values[i] = 0
			continue
		}
		if v > MaxValue {
			v = MaxValue
			values[i] = v
		}
		maxV = math.Max(maxV, v)
	}

	p := Projection{
		Config: c.cfg,
		PlotX:  marginLeft,
		PlotY:  marginTop,
		PlotW:  float64(c.cfg.Width - marginLeft - marginRight),
		PlotH:  float64(c.cfg.Height - marginTop - marginBottom),
	}
	p.PlotRight = p.PlotX + p.PlotW
	p.TickLabelX = p.PlotX - 6
	p.LabelY = p.PlotY + p.PlotH + 20
	p.TitleY = p.PlotY + p.PlotH/2

	step := niceStep(maxV / float64(c.cfg.GridLines))
	p.YMax = math.Ceil(maxV/step) * step
	if p.YMax == 0 {
		p.YMax = step
	}
	n := int(math.Round(p.YMax / step))
	for i := 0; i <= n; i++ {
		v := float64(i) * step
		p.Ticks = append(p.Ticks, Tick{Value: v, Y: p.yFor(v)})
	}

	slot := p.PlotW / float64(len(values))
	width := math.Min(float64(c.cfg.BarThickness), slot*0.9)
	for i, v := range values {
		y := p.yFor(v)
		x := p.PlotX + slot*float64(i) + (slot-width)/2
		p.Bars = append(p.Bars, Bar{
			Label:   c.cfg.Labels[i],
			Value:   v,
			X:       x,
			Y:       y,
			Width:   width,
			Height:  p.PlotY + p.PlotH - y,
			CenterX: x + width/2,
		})
	}
	return p
}

func (p Projection) yFor(v float64) float64 {
	return p.PlotY + p.PlotH - v/p.YMax*p.PlotH
}

// Render returns the chart as an inline SVG fragment.
func (c *BarChart) Render(t domain.Tiers) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, c.Project(t)); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	// The buffer was produced by html/template, so it is already escaped.
	return template.HTML(buf.String()), nil
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	switch f := raw / base; {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}

func formatNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return decimal.NewFromFloat(v).Round(2).String()
}

const svgTemplate = `<svg class="chart" role="img" aria-label="Song request price tiers" viewBox="0 0 {{.Width}} {{.Height}}" width="100%" xmlns="http://www.w3.org/2000/svg">
{{- range .Ticks}}
<line x1="{{num $.PlotX}}" x2="{{num $.PlotRight}}" y1="{{num .Y}}" y2="{{num .Y}}" stroke="#444" stroke-width="1"/>
<text x="{{num $.TickLabelX}}" y="{{num .Y}}" fill="#C2C2C2" font-size="11" text-anchor="end" dominant-baseline="middle">{{num .Value}}</text>
{{- end}}
{{- range .Bars}}
<rect x="{{num .X}}" y="{{num .Y}}" width="{{num .Width}}" height="{{num .Height}}" fill="{{$.Color}}"><title>{{.Label}}: {{num .Value}}</title></rect>
<text x="{{num .CenterX}}" y="{{num $.LabelY}}" fill="#FFFFFF" font-size="12" text-anchor="middle">{{.Label}}</text>
{{- end}}
{{- if .AxisTitle}}
<text transform="translate(14 {{num .TitleY}}) rotate(-90)" fill="#FFFFFF" font-size="12" text-anchor="middle">{{.AxisTitle}}</text>
{{- end}}
</svg>`
