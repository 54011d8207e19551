package i18n

import (
	"golang.org/x/text/language"
)

// maxAcceptLanguageLength prevents DoS attacks through oversized Accept-Language headers.
const maxAcceptLanguageLength = 4096

// CanonicalLocale returns the canonical BCP 47 form of locale ("EN" becomes
// "en", "pt-br" becomes "pt-BR"). Identifiers that do not parse are returned
// unchanged so custom locale keys keep working.
func CanonicalLocale(locale string) string {
	if locale == "" {
		return locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}

// MatchLocale picks the supported locale that best satisfies an
// Accept-Language header. Region variants fall back to their base language
// (fr-CA matches fr). When nothing matches, fallback is returned.
func MatchLocale(header string, supported []string, fallback string) string {
	if header == "" || len(supported) == 0 {
		return fallback
	}

	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}

	desired, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(desired) == 0 {
		return fallback
	}

	tags := make([]language.Tag, 0, len(supported))
	names := make([]string, 0, len(supported))
	for _, locale := range supported {
		tag, err := language.Parse(locale)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, locale)
	}
	if len(tags) == 0 {
		return fallback
	}

	_, idx, confidence := language.NewMatcher(tags).Match(desired...)
	if confidence == language.No || idx < 0 || idx >= len(names) {
		return fallback
	}
	return names[idx]
}
