package models

import "time"

// Canonical candidate labels
const (
	CandidateHarris = "Kamala Harris"
	CandidateTrump  = "Donald Trump"
	CandidateOthers = "Others"
)

// Document field names as stored in the monitoring collection
const (
	FieldDate        = "date"
	FieldCandidates  = "candidates"
	FieldSentiment   = "sentiment"
	FieldUpvotes     = "upvotes"
	FieldComments    = "comments"
	FieldTitle       = "title"
	FieldSubreddit   = "subreddit"
	FieldCommentBody = "comment_body"
)

// Projection is the fixed set of fields requested from the data store
var Projection = []string{
	FieldDate,
	FieldCandidates,
	FieldSentiment,
	FieldUpvotes,
	FieldComments,
	FieldTitle,
	FieldSubreddit,
}

// Document is a semi-structured record as decoded from the data store
type Document map[string]interface{}

// CommentsKind tags the shape a comments field was stored in
type CommentsKind int

const (
	CommentsNone CommentsKind = iota
	CommentsText
	CommentsObject
	CommentsList
)

// CommentObject is a single stored comment. Body is nil when the object
// carries no comment_body string.
type CommentObject struct {
	Body *string
}

// Comments is the decoded comments field of a post. Only the member matching
// Kind is meaningful.
type Comments struct {
	Kind   CommentsKind
	Text   string
	Object CommentObject
	List   []CommentObject
}

// RawPost is a typed view over a Document before normalization
type RawPost struct {
	Date       interface{}
	Candidates interface{}
	Sentiment  string
	Upvotes    int
	Comments   Comments
	Title      string
	Subreddit  string
}

// NormalizedPost is a post after date parsing, candidate classification and
// comment flattening. Date is always valid.
type NormalizedPost struct {
	Date      time.Time `json:"date"`
	Candidate string    `json:"candidate"`
	Sentiment string    `json:"sentiment"`
	Upvotes   int       `json:"upvotes"`
	Title     string    `json:"title"`
	Subreddit string    `json:"subreddit"`
	Comments  []string  `json:"comments"`
}

// FetchStatus tracks the outcome of the most recent fetch
type FetchStatus struct {
	LastSuccessfulFetch time.Time `json:"last_successful_fetch"`
	LastAttempt         time.Time `json:"last_attempt"`
	Status              string    `json:"status"` // "success", "failure", "never_run"
	ErrorMessage        string    `json:"error_message,omitempty"`
	RecordsFetched      int       `json:"records_fetched"`
	RecordsDropped      int       `json:"records_dropped"`
	Cached              bool      `json:"cached"`
}
