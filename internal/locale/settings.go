// Package locale holds the immutable language and currency settings shared by the
// sanitizer, the formatter and the renderers.
package locale

import (
	"sort"

	"assetvaluer/internal/config"
)

// Settings is an immutable value; construct it once at start-up and pass it by value.
type Settings struct {
	defaultLanguage string
	defaultCurrency string
	defaultLocale   string
	languages       map[string]string // language code -> locale tag
}

// Default returns the built-in settings: English and Arabic, GBP, en-GB.
func Default() Settings {
	return New("en", "GBP", map[string]string{
		"en": "en-GB",
		"ar": "ar",
	})
}

// FromConfig builds settings from the asset configuration. A default language outside the
// supported set and a default currency that is not three upper-case letters are ignored.
func FromConfig(cfg config.AssetConfig) Settings {
	s := Default()
	if _, ok := s.languages[cfg.DefaultLanguage]; ok {
		s.defaultLanguage = cfg.DefaultLanguage
	}
	if isCurrencyCode(cfg.DefaultCurrency) {
		s.defaultCurrency = cfg.DefaultCurrency
	}
	return s
}

// isCurrencyCode reports whether code is exactly three letters A-Z.
func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// New builds settings from explicit values. The locale map is copied.
func New(defaultLanguage, defaultCurrency string, languages map[string]string) Settings {
	m := make(map[string]string, len(languages))
	for k, v := range languages {
		m[k] = v
	}
	return Settings{
		defaultLanguage: defaultLanguage,
		defaultCurrency: defaultCurrency,
		defaultLocale:   "en-GB",
		languages:       m,
	}
}

func (s Settings) DefaultLanguage() string { return s.defaultLanguage }
func (s Settings) DefaultCurrency() string { return s.defaultCurrency }
func (s Settings) DefaultLocale() string   { return s.defaultLocale }

// Supports reports whether code is one of the supported language codes.
func (s Settings) Supports(code string) bool {
	_, ok := s.languages[code]
	return ok
}

// LocaleFor returns the mapped locale tag for a language code and whether it was mapped.
func (s Settings) LocaleFor(code string) (string, bool) {
	tag, ok := s.languages[code]
	return tag, ok
}

// Languages returns the supported language codes, sorted.
func (s Settings) Languages() []string {
	out := make([]string, 0, len(s.languages))
	for k := range s.languages {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
