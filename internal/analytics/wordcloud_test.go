package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "see this thread", CleanText("see [this thread](https://reddit.com/r/politics)"))
	assert.Equal(t, "read here", CleanText("read here https://example.com/a?b=c"))
	assert.Equal(t, "bold and italic", CleanText("**bold** and *italic*"))
	assert.Equal(t, "quoted & escaped", CleanText("> quoted & escaped"))
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Trump's rally was LOUD, and the crowd's energy in 2024 would be wild!")

	assert.Equal(t, []string{"rally", "loud", "crowd", "energy", "wild"}, got)
}

func TestTokenize_Unicode(t *testing.T) {
	got := Tokenize(CleanText("La elección está reñida, niño José"))

	assert.Equal(t, []string{"la", "elección", "está", "reñida", "niño", "josé"}, got)
}

func TestIsStopword(t *testing.T) {
	for _, w := range []string{"the", "Trump", "DONALD", "kamala", "Harris", "https", "www", "would", "wouldn't"} {
		assert.True(t, IsStopword(w), w)
	}
	assert.False(t, IsStopword("economy"))
}

func TestWordCloud(t *testing.T) {
	comments := []string{
		"The economy matters",
		"economy and jobs",
		"Jobs, jobs, jobs",
		"Kamala Harris on the economy",
	}

	got := WordCloud(comments, 10)

	require.Len(t, got, 3)
	assert.Equal(t, Term{Word: "jobs", Count: 4, Weight: 1}, got[0])
	assert.Equal(t, Term{Word: "economy", Count: 3, Weight: 0.75}, got[1])
	assert.Equal(t, Term{Word: "matters", Count: 1, Weight: 0.25}, got[2])
}

func TestWordCloud_AccentedWords(t *testing.T) {
	got := WordCloud([]string{"Café résumé naïve", "café latte"}, 10)

	require.Len(t, got, 4)
	assert.Equal(t, Term{Word: "café", Count: 2, Weight: 1}, got[0])
	assert.Equal(t, []string{"latte", "naïve", "résumé"}, []string{got[1].Word, got[2].Word, got[3].Word})
}

func TestWordCloud_Limit(t *testing.T) {
	got := WordCloud([]string{"alpha beta gamma delta"}, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Word)
	assert.Equal(t, "beta", got[1].Word)
}

func TestWordCloud_Empty(t *testing.T) {
	assert.Empty(t, WordCloud(nil, 10))
	assert.Empty(t, WordCloud([]string{"the and of", "https://example.com"}, 10))
}
