// Package normalizer turns semi-structured post documents into rows with a
// valid date, a canonical candidate label and flattened comment text.
package normalizer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// Decode builds a typed RawPost view over a document. It never fails: fields
// with unexpected shapes decode to their zero value.
func Decode(doc models.Document) models.RawPost {
	return models.RawPost{
		Date:       doc[models.FieldDate],
		Candidates: doc[models.FieldCandidates],
		Sentiment:  asString(doc[models.FieldSentiment]),
		Upvotes:    asInt(doc[models.FieldUpvotes]),
		Comments:   DecodeComments(doc[models.FieldComments]),
		Title:      asString(doc[models.FieldTitle]),
		Subreddit:  asString(doc[models.FieldSubreddit]),
	}
}

// Normalize converts a batch of documents. Documents whose date cannot be
// parsed are left out and counted in dropped; every other document yields
// exactly one post, in input order.
func Normalize(docs []models.Document) (posts []models.NormalizedPost, dropped int) {
	posts = make([]models.NormalizedPost, 0, len(docs))

	for _, doc := range docs {
		post, ok := NormalizePost(Decode(doc))
		if !ok {
			dropped++
			continue
		}
		posts = append(posts, post)
	}

	return posts, dropped
}

// NormalizePost normalizes a single decoded post. ok is false when the date
// does not parse.
func NormalizePost(raw models.RawPost) (models.NormalizedPost, bool) {
	date, ok := ParseDate(raw.Date)
	if !ok {
		return models.NormalizedPost{}, false
	}

	return models.NormalizedPost{
		Date:      date,
		Candidate: ClassifyCandidate(raw.Candidates),
		Sentiment: raw.Sentiment,
		Upvotes:   raw.Upvotes,
		Title:     raw.Title,
		Subreddit: raw.Subreddit,
		Comments:  FlattenComments(raw.Comments),
	}, true
}

// FlattenAll concatenates the flattened comments of every post in order
func FlattenAll(posts []models.NormalizedPost) []string {
	var out []string
	for _, p := range posts {
		out = append(out, p.Comments...)
	}
	return out
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// asInt reads the numeric encodings the supported stores produce. Missing or
// non-numeric values count as zero.
func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
