package chat

import "strings"

// Intent is the classifier's verdict for one user turn.
type Intent string

const (
	IntentError           Intent = "error"
	IntentExactTitle      Intent = "exact_title"
	IntentSimilarMedia    Intent = "similar_media"
	IntentFiltersParsing  Intent = "filters_parsing"
	IntentFreeDescription Intent = "free_description"
)

// intentUnclassified labels metrics for turns whose classification failed.
const intentUnclassified = "unclassified"

// ParseIntent maps classifier output to a known Intent.
func ParseIntent(value string) (Intent, bool) {
	switch intent := Intent(strings.ToLower(strings.TrimSpace(value))); intent {
	case IntentError, IntentExactTitle, IntentSimilarMedia, IntentFiltersParsing, IntentFreeDescription:
		return intent, true
	default:
		return "", false
	}
}

func (i Intent) String() string { return string(i) }
