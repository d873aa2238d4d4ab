package i18n

import "strings"

type Lang string

const (
	RU Lang = "ru"
	EN Lang = "en"
)

// FromLanguageCode maps a Telegram language_code ("ru", "ru-RU", "en-US", ...)
// to a supported language. Anything that is not Russian falls back to English.
func FromLanguageCode(code string) Lang {
	code = strings.ToLower(strings.TrimSpace(code))
	if strings.HasPrefix(code, "ru") {
		return RU
	}
	return EN
}

func Parse(s string) Lang {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ru":
		return RU
	default:
		return EN
	}
}

// Pick returns the text for lang.
func Pick(lang Lang, en, ru string) string {
	if lang == RU {
		return ru
	}
	return en
}
