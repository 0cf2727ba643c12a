package analytics

import (
	"time"

	"github.com/electionwatch/candidate-dashboard/internal/models"
	"github.com/electionwatch/candidate-dashboard/internal/normalizer"
)

// ReportOptions sizes the bounded sections of a report
type ReportOptions struct {
	WordCloudLimit int
	TopPosts       int
}

// DefaultReportOptions matches the dashboard defaults
var DefaultReportOptions = ReportOptions{WordCloudLimit: 100, TopPosts: 10}

// Report holds every aggregate the dashboard renders for one filter. All
// slices are non-nil, so an empty selection renders as empty sections.
type Report struct {
	Start                 string           `json:"start"`
	End                   string           `json:"end"`
	Candidate             string           `json:"candidate"`
	Total                 int              `json:"total"`
	CommentCount          int              `json:"comment_count"`
	SentimentOverTime     []SentimentPoint `json:"sentiment_over_time"`
	Interactions          []Interaction    `json:"interactions"`
	WordCloud             []Term           `json:"word_cloud"`
	TopPosts              []TopPost        `json:"top_posts"`
	SentimentDistribution []SentimentCount `json:"sentiment_distribution"`
}

// Empty reports whether no post passed the filter
func (r Report) Empty() bool {
	return r.Total == 0
}

// BuildReport filters posts and aggregates the selection
func BuildReport(posts []models.NormalizedPost, f Filter, opts ReportOptions) Report {
	selected := f.Apply(posts)
	comments := normalizer.FlattenAll(selected)

	return Report{
		Start:                 formatDay(f.Start),
		End:                   formatDay(f.End),
		Candidate:             f.Candidate,
		Total:                 len(selected),
		CommentCount:          len(comments),
		SentimentOverTime:     SentimentOverTime(selected),
		Interactions:          Interactions(selected),
		WordCloud:             WordCloud(comments, opts.WordCloudLimit),
		TopPosts:              TopPosts(selected, opts.TopPosts),
		SentimentDistribution: SentimentDistribution(selected),
	}
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
