package analytics

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/russross/blackfriday/v2"
)

// Term is a word cloud entry. Weight is Count relative to the most frequent
// term, in (0, 1].
type Term struct {
	Word   string  `json:"word"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern          = regexp.MustCompile(`<[^>]*>`)
	wordPattern         = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_']+`)
	numberPattern       = regexp.MustCompile(`^[\p{N}']+$`)
)

// Exclusions are removed on top of the English stopwords: the candidates'
// own names and link boilerplate.
var Exclusions = []string{"trump", "donald", "kamala", "harris", "https", "www", "would"}

// englishStopwords is the NLTK English stopword list
var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what",
	"which", "who", "whom", "this", "that", "that'll", "these", "those", "am",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "a", "an", "the", "and", "but", "if",
	"or", "because", "as", "until", "while", "of", "at", "by", "for", "with",
	"about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in", "out", "on",
	"off", "over", "under", "again", "further", "then", "once", "here", "there",
	"when", "where", "why", "how", "all", "any", "both", "each", "few", "more",
	"most", "other", "some", "such", "no", "nor", "not", "only", "own", "same",
	"so", "than", "too", "very", "s", "t", "can", "will", "just", "don", "don't",
	"should", "should've", "now", "d", "ll", "m", "o", "re", "ve", "y", "ain",
	"aren", "aren't", "couldn", "couldn't", "didn", "didn't", "doesn", "doesn't",
	"hadn", "hadn't", "hasn", "hasn't", "haven", "haven't", "isn", "isn't", "ma",
	"mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan",
	"shan't", "shouldn", "shouldn't", "wasn", "wasn't", "weren", "weren't",
	"won", "won't", "wouldn", "wouldn't",
}

var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	set := make(map[string]struct{}, len(englishStopwords)+len(Exclusions))
	for _, w := range englishStopwords {
		set[w] = struct{}{}
	}
	for _, w := range Exclusions {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether word is dropped from the word cloud
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// CleanText turns a markdown comment into plain text without links
func CleanText(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")

	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	text := html.UnescapeString(tagPattern.ReplaceAllString(string(rendered), " "))

	text = urlPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Tokenize splits cleaned text into lower-cased words, dropping stopwords,
// numbers and possessive suffixes
func Tokenize(text string) []string {
	var words []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		w = strings.TrimSuffix(w, "'s")
		w = strings.Trim(w, "'")
		if utf8.RuneCountInString(w) < 2 || numberPattern.MatchString(w) || IsStopword(w) {
			continue
		}
		words = append(words, w)
	}
	return words
}

// WordCloud counts terms across comments and returns the limit most frequent,
// ties broken alphabetically
func WordCloud(comments []string, limit int) []Term {
	counts := make(map[string]int)
	for _, c := range comments {
		for _, w := range Tokenize(CleanText(c)) {
			counts[w]++
		}
	}

	terms := make([]Term, 0, len(counts))
	for w, n := range counts {
		terms = append(terms, Term{Word: w, Count: n})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Word < terms[j].Word
	})

	if limit >= 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	if len(terms) > 0 {
		top := float64(terms[0].Count)
		for i := range terms {
			terms[i].Weight = float64(terms[i].Count) / top
		}
	}
	return terms
}
