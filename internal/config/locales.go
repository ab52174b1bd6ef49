package config

import "log/slog"

const (
	LangPT = "pt"
	LangEN = "en"
	LangES = "es"

	DefaultLang = LangPT
)

func SupportedLangs() []string {
	return []string{LangPT, LangEN, LangES}
}

func IsSupportedLang(lang string) bool {
	for _, l := range SupportedLangs() {
		if l == lang {
			return true
		}
	}
	return false
}

// GetLocaleConfig normalises lang to a supported language, falling back to Portuguese.
func GetLocaleConfig(lang string) string {
	if IsSupportedLang(lang) {
		return lang
	}
	slog.Warn("language not supported, using default", "language", lang, "default", DefaultLang)
	return DefaultLang
}
