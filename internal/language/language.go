package language

import "strings"

type entry struct {
	code2   string // ISO 639-1
	code3   string // ISO 639-2/T
	alt3    string // ISO 639-2/B when it differs
	display string
}

var languages = []entry{
	{"en", "eng", "", "English"},
	{"ru", "rus", "", "Russian"},
	{"zh", "zho", "chi", "Chinese"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"pt", "por", "", "Portuguese"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"ar", "ara", "", "Arabic"},
	{"hi", "hin", "", "Hindi"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "", "Polish"},
	{"uk", "ukr", "", "Ukrainian"},
	{"cs", "ces", "cze", "Czech"},
	{"el", "ell", "gre", "Greek"},
	{"fa", "fas", "per", "Persian"},
	{"sv", "swe", "", "Swedish"},
	{"da", "dan", "", "Danish"},
	{"no", "nor", "", "Norwegian"},
	{"fi", "fin", "", "Finnish"},
	{"tr", "tur", "", "Turkish"},
	{"he", "heb", "", "Hebrew"},
}

var byCode map[string]*entry

func init() {
	byCode = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		byCode[e.code2] = e
		byCode[e.code3] = e
		if e.alt3 != "" {
			byCode[e.alt3] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	return byCode[code]
}

// IsKnown reports whether code is a recognized ISO 639-1 or 639-2 code.
func IsKnown(code string) bool {
	return lookup(code) != nil
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Synonyms returns the other three-letter codes for the same language as
// code, e.g. "chi" for "zho". Unknown codes and codes without an alternate
// yield nil.
func Synonyms(code string) []string {
	e := lookup(code)
	if e == nil || e.alt3 == "" {
		return nil
	}
	code = strings.TrimSpace(code)
	var out []string
	for _, candidate := range []string{e.code3, e.alt3} {
		if !strings.EqualFold(candidate, code) {
			out = append(out, candidate)
		}
	}
	return out
}
