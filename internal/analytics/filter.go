// Package analytics filters normalized posts and computes the aggregates
// the dashboard renders.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// CandidateAll disables candidate filtering
const CandidateAll = "All"

// DateLayout is the format of date filter parameters
const DateLayout = "2006-01-02"

var (
	ErrInvalidCandidate = errors.New("candidate must be one of: All, Kamala Harris, Donald Trump")
	ErrInvalidDate      = errors.New("dates must use the YYYY-MM-DD format")
	ErrInvertedRange    = errors.New("start date must not be after end date")
)

// Candidates lists the selector options in display order
var Candidates = []string{CandidateAll, models.CandidateHarris, models.CandidateTrump}

// Filter selects posts by calendar day and candidate. Start and End are
// inclusive days in UTC; a zero bound is open.
type Filter struct {
	Start     time.Time
	End       time.Time
	Candidate string
}

// Day truncates t to midnight UTC
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultFilter spans the earliest to the latest post for all candidates
func DefaultFilter(posts []models.NormalizedPost) Filter {
	f := Filter{Candidate: CandidateAll}
	for i, p := range posts {
		day := Day(p.Date)
		if i == 0 || day.Before(f.Start) {
			f.Start = day
		}
		if i == 0 || day.After(f.End) {
			f.End = day
		}
	}
	return f
}

// ParseFilter builds a filter from request parameters. Empty parameters fall
// back to the bounds of DefaultFilter.
func ParseFilter(posts []models.NormalizedPost, start, end, candidate string) (Filter, error) {
	f := DefaultFilter(posts)

	if start != "" {
		t, err := time.Parse(DateLayout, start)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
		}
		f.Start = t
	}
	if end != "" {
		t, err := time.Parse(DateLayout, end)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
		}
		f.End = t
	}
	// Only bounds the caller supplied can be inverted. A window outside the
	// data selects nothing.
	if start != "" && end != "" && f.Start.After(f.End) {
		return Filter{}, ErrInvertedRange
	}

	if candidate != "" {
		if !validCandidate(candidate) {
			return Filter{}, fmt.Errorf("%w: got %q", ErrInvalidCandidate, candidate)
		}
		f.Candidate = candidate
	}

	return f, nil
}

func validCandidate(c string) bool {
	for _, option := range Candidates {
		if c == option {
			return true
		}
	}
	return false
}

// Match reports whether a post passes the filter
func (f Filter) Match(p models.NormalizedPost) bool {
	day := Day(p.Date)
	if !f.Start.IsZero() && day.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && day.After(f.End) {
		return false
	}
	if f.Candidate != "" && f.Candidate != CandidateAll && p.Candidate != f.Candidate {
		return false
	}
	return true
}

// Apply returns the posts passing the filter, in input order
func (f Filter) Apply(posts []models.NormalizedPost) []models.NormalizedPost {
	out := make([]models.NormalizedPost, 0, len(posts))
	for _, p := range posts {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
