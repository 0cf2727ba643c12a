package analytics

import (
	"sort"
	"time"

	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// SentimentPoint is the number of posts for one day, candidate and sentiment
type SentimentPoint struct {
	Day       time.Time `json:"date"`
	Candidate string    `json:"candidate"`
	Sentiment string    `json:"sentiment"`
	Count     int       `json:"count"`
}

// Interaction totals engagement for one candidate
type Interaction struct {
	Candidate string `json:"candidate"`
	Upvotes   int    `json:"upvotes"`
	Posts     int    `json:"posts"`
	Comments  int    `json:"comments"`
}

// TopPost is a row of the most influential posts table
type TopPost struct {
	Title     string `json:"title"`
	Upvotes   int    `json:"upvotes"`
	Subreddit string `json:"subreddit"`
}

// SentimentCount is the number of posts for one candidate and sentiment
type SentimentCount struct {
	Candidate string `json:"candidate"`
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

type sentimentKey struct {
	day       time.Time
	candidate string
	sentiment string
}

// SentimentOverTime counts posts per (day, candidate, sentiment), ordered by
// day then candidate then sentiment
func SentimentOverTime(posts []models.NormalizedPost) []SentimentPoint {
	counts := make(map[sentimentKey]int)
	for _, p := range posts {
		counts[sentimentKey{day: Day(p.Date), candidate: p.Candidate, sentiment: p.Sentiment}]++
	}

	out := make([]SentimentPoint, 0, len(counts))
	for k, n := range counts {
		out = append(out, SentimentPoint{Day: k.day, Candidate: k.candidate, Sentiment: k.sentiment, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		if a.Candidate != b.Candidate {
			return a.Candidate < b.Candidate
		}
		return a.Sentiment < b.Sentiment
	})
	return out
}

// Interactions sums upvotes, posts and flattened comments per candidate,
// ordered by candidate
func Interactions(posts []models.NormalizedPost) []Interaction {
	byCandidate := make(map[string]*Interaction)
	for _, p := range posts {
		it, ok := byCandidate[p.Candidate]
		if !ok {
			it = &Interaction{Candidate: p.Candidate}
			byCandidate[p.Candidate] = it
		}
		it.Upvotes += p.Upvotes
		it.Posts++
		it.Comments += len(p.Comments)
	}

	out := make([]Interaction, 0, len(byCandidate))
	for _, it := range byCandidate {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Candidate < out[j].Candidate })
	return out
}

// TopPosts returns the n posts with the most upvotes. Ties keep input order.
func TopPosts(posts []models.NormalizedPost, n int) []TopPost {
	sorted := make([]models.NormalizedPost, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Upvotes > sorted[j].Upvotes })

	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]TopPost, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, TopPost{Title: p.Title, Upvotes: p.Upvotes, Subreddit: p.Subreddit})
	}
	return out
}

// SentimentDistribution counts posts per (candidate, sentiment)
func SentimentDistribution(posts []models.NormalizedPost) []SentimentCount {
	type key struct{ candidate, sentiment string }
	counts := make(map[key]int)
	for _, p := range posts {
		counts[key{p.Candidate, p.Sentiment}]++
	}

	out := make([]SentimentCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, SentimentCount{Candidate: k.candidate, Sentiment: k.sentiment, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Candidate != out[j].Candidate {
			return out[i].Candidate < out[j].Candidate
		}
		return out[i].Sentiment < out[j].Sentiment
	})
	return out
}
