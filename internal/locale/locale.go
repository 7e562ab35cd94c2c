package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Supported user-facing locales.
const (
	English = "en"
	French  = "fr"
	Default = English
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.French})

// Normalize maps a BCP 47 tag or Accept-Language header value to "en" or
// "fr". Anything unsupported or unparsable falls back to English.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default
	}
	if index == 1 {
		return French
	}
	return English
}

// Other returns the fallback locale for localized fields.
func Other(loc string) string {
	if loc == French {
		return English
	}
	return French
}
