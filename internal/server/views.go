package server

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/electionwatch/candidate-dashboard/internal/analytics"
	"github.com/electionwatch/candidate-dashboard/internal/models"
)

var candidateColors = map[string]string{
	models.CandidateHarris: "#1f77b4",
	models.CandidateTrump:  "#d62728",
}

var sentimentColors = map[string]string{
	"Positive": "green",
	"Negative": "red",
}

var sentimentDashes = map[string]string{
	"Positive": "",
	"Negative": "6 4",
}

const fallbackColor = "#7f7f7f"

var templateFuncs = template.FuncMap{
	"candidateColor": func(c string) string { return colorOr(candidateColors, c) },
	"sentimentColor": func(s string) string { return colorOr(sentimentColors, s) },
	"pct":            func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	"fontSize":       func(weight float64) string { return fmt.Sprintf("%.0fpx", 12+weight*36) },
}

func colorOr(m map[string]string, key string) string {
	if c, ok := m[key]; ok {
		return c
	}
	return fallbackColor
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(analytics.DateLayout)
}

type dashboardPage struct {
	LastUpdated string
	Error       string
	NoData      string
	NoComments  string

	Candidates []string
	Candidate  string
	Start      string
	End        string
	MinDate    string
	MaxDate    string

	Report       analytics.Report
	HasData      bool
	Line         lineChart
	Interactions []interactionBar
	Sentiment    []sentimentBar
}

func (p *dashboardPage) fill(r analytics.Report) {
	p.Report = r
	p.HasData = !r.Empty()
	p.Start = r.Start
	p.End = r.End
	p.Candidate = r.Candidate
	p.Line = buildLineChart(r.SentimentOverTime)
	p.Interactions = buildInteractionBars(r.Interactions)
	p.Sentiment = buildSentimentBars(r.SentimentDistribution)
}

// lineChart is an SVG rendering of sentiment counts over time with one
// series per (candidate, sentiment)
type lineChart struct {
	Width, Height int
	Series        []lineSeries
	XLabels       []axisLabel
	MaxCount      int
}

type lineSeries struct {
	Label  string
	Color  string
	Dash   string
	Points string
}

type axisLabel struct {
	X    float64
	Text string
}

const (
	chartWidth   = 800
	chartHeight  = 300
	chartPadding = 40
)

func buildLineChart(points []analytics.SentimentPoint) lineChart {
	chart := lineChart{Width: chartWidth, Height: chartHeight}
	if len(points) == 0 {
		return chart
	}

	var days []time.Time
	seen := make(map[time.Time]bool)
	for _, p := range points {
		if !seen[p.Day] {
			seen[p.Day] = true
			days = append(days, p.Day)
		}
		if p.Count > chart.MaxCount {
			chart.MaxCount = p.Count
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	xOf := func(day time.Time) float64 {
		if len(days) == 1 {
			return chartPadding + plotW/2
		}
		idx := sort.Search(len(days), func(i int) bool { return !days[i].Before(day) })
		return chartPadding + plotW*float64(idx)/float64(len(days)-1)
	}
	yOf := func(count int) float64 {
		return chartPadding + plotH*(1-float64(count)/float64(chart.MaxCount))
	}

	for _, day := range days {
		chart.XLabels = append(chart.XLabels, axisLabel{X: xOf(day), Text: day.Format("01-02")})
	}

	type seriesKey struct{ candidate, sentiment string }
	var order []seriesKey
	coords := make(map[seriesKey][]string)
	for _, p := range points {
		k := seriesKey{p.Candidate, p.Sentiment}
		if _, ok := coords[k]; !ok {
			order = append(order, k)
		}
		coords[k] = append(coords[k], fmt.Sprintf("%.1f,%.1f", xOf(p.Day), yOf(p.Count)))
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].candidate != order[j].candidate {
			return order[i].candidate < order[j].candidate
		}
		return order[i].sentiment < order[j].sentiment
	})

	for _, k := range order {
		dash, ok := sentimentDashes[k.sentiment]
		if !ok {
			dash = "2 3"
		}
		chart.Series = append(chart.Series, lineSeries{
			Label:  k.candidate + " / " + k.sentiment,
			Color:  colorOr(candidateColors, k.candidate),
			Dash:   dash,
			Points: strings.Join(coords[k], " "),
		})
	}

	return chart
}

// interactionBar is one stacked bar of upvotes and comments, scaled against
// the largest candidate total
type interactionBar struct {
	analytics.Interaction
	Color       string
	UpvotesPct  float64
	CommentsPct float64
}

func buildInteractionBars(items []analytics.Interaction) []interactionBar {
	maxTotal := 0
	for _, it := range items {
		if total := it.Upvotes + it.Comments; total > maxTotal {
			maxTotal = total
		}
	}

	bars := make([]interactionBar, 0, len(items))
	for _, it := range items {
		bar := interactionBar{Interaction: it, Color: colorOr(candidateColors, it.Candidate)}
		if maxTotal > 0 {
			bar.UpvotesPct = float64(it.Upvotes) / float64(maxTotal)
			bar.CommentsPct = float64(it.Comments) / float64(maxTotal)
		}
		bars = append(bars, bar)
	}
	return bars
}

type sentimentSegment struct {
	Sentiment string
	Count     int
	Pct       float64
}

// sentimentBar stacks sentiment counts for one candidate, scaled against
// the candidate with the most posts
type sentimentBar struct {
	Candidate string
	Total     int
	Segments  []sentimentSegment
}

func buildSentimentBars(counts []analytics.SentimentCount) []sentimentBar {
	var bars []sentimentBar
	index := make(map[string]int)
	for _, sc := range counts {
		i, ok := index[sc.Candidate]
		if !ok {
			i = len(bars)
			index[sc.Candidate] = i
			bars = append(bars, sentimentBar{Candidate: sc.Candidate})
		}
		bars[i].Total += sc.Count
		bars[i].Segments = append(bars[i].Segments, sentimentSegment{Sentiment: sc.Sentiment, Count: sc.Count})
	}

	maxTotal := 0
	for _, b := range bars {
		if b.Total > maxTotal {
			maxTotal = b.Total
		}
	}
	for i := range bars {
		for j := range bars[i].Segments {
			if maxTotal > 0 {
				bars[i].Segments[j].Pct = float64(bars[i].Segments[j].Count) / float64(maxTotal)
			}
		}
	}
	return bars
}
