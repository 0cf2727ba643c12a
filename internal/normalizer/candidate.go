package normalizer

import "github.com/electionwatch/candidate-dashboard/internal/models"

// Classification rules in priority order. A value naming both candidates
// matches the first rule.
var candidateRules = []struct {
	label  string
	tokens []string
}{
	{label: models.CandidateHarris, tokens: []string{"Kamala", "Kamala Harris"}},
	{label: models.CandidateTrump, tokens: []string{"Trump", "Donald Trump"}},
}

// ClassifyCandidate maps a stored candidates value (a string or a sequence of
// strings) to a canonical label. A token matches only when it equals one of the
// rule's literals exactly. Unrecognized values fall into the Others bucket.
func ClassifyCandidate(v interface{}) string {
	tokens := candidateTokens(v)

	for _, rule := range candidateRules {
		for _, token := range tokens {
			for _, literal := range rule.tokens {
				if token == literal {
					return rule.label
				}
			}
		}
	}

	return models.CandidateOthers
}

func candidateTokens(v interface{}) []string {
	switch c := v.(type) {
	case string:
		return []string{c}
	case []string:
		return c
	case []interface{}:
		tokens := make([]string, 0, len(c))
		for _, item := range c {
			if s, ok := item.(string); ok {
				tokens = append(tokens, s)
			}
		}
		return tokens
	default:
		return nil
	}
}
