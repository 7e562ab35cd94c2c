package locale

import "strings"

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms in English and French
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english", "anglais"}},
	{"fr", "fra", "fre", "French", []string{"french", "français", "francais"}},
	{"es", "spa", "", "Spanish", []string{"spanish", "espagnol"}},
	{"de", "deu", "ger", "German", []string{"german", "allemand"}},
	{"it", "ita", "", "Italian", []string{"italian", "italien"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese", "portugais"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese", "japonais"}},
	{"ko", "kor", "", "Korean", []string{"korean", "coréen", "coreen"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese", "chinois", "mandarin"}},
	{"ru", "rus", "", "Russian", []string{"russian", "russe"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"sv", "swe", "", "Swedish", []string{"swedish", "suédois", "suedois"}},
	{"da", "dan", "", "Danish", []string{"danish", "danois"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian", "norvégien"}},
	{"tr", "tur", "", "Turkish", []string{"turkish", "turc"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

// ISO2 converts a code or language word ("French", "jpn", "ko") to ISO 639-1.
// Unknown 2-letter codes pass through; anything else yields "".
func ISO2(value string) string {
	code := strings.ToLower(strings.TrimSpace(value))
	if code == "" {
		return ""
	}
	if e, ok := byCode2[code]; ok {
		return e.code2
	}
	if e, ok := byCode3[code]; ok {
		return e.code2
	}
	if e, ok := byWord[code]; ok {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable language name, or the uppercased code.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if e, ok := byCode2[strings.ToLower(ISO2(code))]; ok {
		return e.display
	}
	return strings.ToUpper(code)
}
