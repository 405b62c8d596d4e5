package gym

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// Charts renders dashboard charts to embeddable HTML.
type Charts struct {
	cache      *QueryCache
	theme      string
	assetsHost string
}

// ChartOption customizes chart rendering.
type ChartOption func(*Charts)

// WithChartCache memoizes rendered charts keyed by their input data.
func WithChartCache(cache *QueryCache) ChartOption {
	return func(c *Charts) {
		c.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(c *Charts) {
		c.theme = theme
	}
}

// WithChartAssetsHost loads the ECharts JS from a different host.
func WithChartAssetsHost(host string) ChartOption {
	return func(c *Charts) {
		c.assetsHost = host
	}
}

// NewCharts builds a chart renderer.
func NewCharts(options ...ChartOption) *Charts {
	c := &Charts{
		cache: NewQueryCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Attendance renders check-ins per hour of day as a bar chart.
func (c *Charts) Attendance(ctx context.Context, stats AttendanceStats) (string, error) {
	key := queryKey("chart:attendance", struct {
		Counts [24]int
		Peak   int
	}{stats.HourlyCounts, stats.PeakHour})
	return loadCached(ctx, c.cache, key, func(context.Context) (string, error) {
		hours := make([]string, 24)
		data := make([]opts.BarData, 24)
		for hour, count := range stats.HourlyCounts {
			hours[hour] = HourLabel(hour)
			data[hour] = opts.BarData{Name: hours[hour], Value: count}
		}
		subtitle := fmt.Sprintf("Peak hour: %s", stats.PeakHourLabel)
		bar := charts.NewBar()
		bar.SetGlobalOptions(c.globalOptions("Check-ins by hour", subtitle)...)
		bar.SetXAxis(hours)
		bar.AddSeries("Check-ins", data)
		return renderChart(bar)
	})
}

// PlanDistribution renders each plan's member count as a pie chart.
func (c *Charts) PlanDistribution(ctx context.Context, distribution []PlanDistribution) (string, error) {
	key := queryKey("chart:plans", distribution)
	return loadCached(ctx, c.cache, key, func(context.Context) (string, error) {
		data := make([]opts.PieData, 0, len(distribution))
		for i, entry := range distribution {
			name := entry.PlanName
			if name == "" {
				name = fmt.Sprintf("Plan %d", i+1)
			}
			data = append(data, opts.PieData{Name: name, Value: entry.Count})
		}
		pie := charts.NewPie()
		pie.SetGlobalOptions(c.globalOptions("Plan distribution", "")...)
		pie.AddSeries("Members", data)
		return renderChart(pie)
	})
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("gym: render chart: %w", err)
	}
	return buf.String(), nil
}

func (c *Charts) globalOptions(title, subtitle string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  c.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}
