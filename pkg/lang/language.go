package lang

// Language represents supported output languages
type Language string

const (
	English            Language = "en"
	ChineseSimplified  Language = "zh"
	ChineseTraditional Language = "zh-tw"
	Japanese           Language = "ja"
	Korean             Language = "ko"
	Spanish            Language = "es"
	French             Language = "fr"
	German             Language = "de"
	Portuguese         Language = "pt"
	Russian            Language = "ru"
	Italian            Language = "it"
	Dutch              Language = "nl"
	Turkish            Language = "tr"
	Vietnamese         Language = "vi"
)

// String returns the string representation of the language
func (l Language) String() string {
	return string(l)
}

// IsValid checks if the language is valid
func (l Language) IsValid() bool {
	switch l {
	case English, ChineseSimplified, ChineseTraditional, Japanese, Korean,
		Spanish, French, German, Portuguese, Russian, Italian, Dutch,
		Turkish, Vietnamese:
		return true
	default:
		return false
	}
}

// DisplayName returns the name of the language as written into a prompt.
// English names keep the generation service's instruction unambiguous.
func (l Language) DisplayName() string {
	switch l {
	case English:
		return "English"
	case ChineseSimplified:
		return "Simplified Chinese"
	case ChineseTraditional:
		return "Traditional Chinese"
	case Japanese:
		return "Japanese"
	case Korean:
		return "Korean"
	case Spanish:
		return "Spanish"
	case French:
		return "French"
	case German:
		return "German"
	case Portuguese:
		return "Portuguese"
	case Russian:
		return "Russian"
	case Italian:
		return "Italian"
	case Dutch:
		return "Dutch"
	case Turkish:
		return "Turkish"
	case Vietnamese:
		return "Vietnamese"
	default:
		return string(l)
	}
}

// DefaultLanguage returns the default language
func DefaultLanguage() Language {
	return English
}

// ParseLanguage parses a string to a Language
func ParseLanguage(s string) Language {
	l := Language(s)
	if l.IsValid() {
		return l
	}
	return DefaultLanguage()
}
